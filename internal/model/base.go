package model

import "encoding/json"

// Envelope is the registry response wrapper. Dados may hold an object,
// an array or an array wrapped in another array.
type Envelope struct {
	Dados    json.RawMessage `json:"dados,omitempty"`
	Mensagem string          `json:"mensagem,omitempty"`
}

// Record is implemented by every entity shown in a list screen.
type Record interface {
	Key() string
}

const RoleAdmin = "ADMIN"

// ChartDatum is one labelled count of a chart.
type ChartDatum struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color,omitempty"`
}
