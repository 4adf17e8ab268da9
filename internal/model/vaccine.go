package model

type Vaccine struct {
	UUID           string `json:"uuid"`
	ID             int64  `json:"id,omitempty"`
	Nome           string `json:"nome"`
	NumeroLote     string `json:"numeroLote"`
	Fabricante     string `json:"fabricante"`
	DataFabricacao string `json:"dataFabricacao"`
	DataValidade   string `json:"dataValidade"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (v Vaccine) Key() string { return v.UUID }

type UpdateVaccineRequest struct {
	Nome           string `json:"nome" binding:"required"`
	NumeroLote     string `json:"numeroLote" binding:"required"`
	Fabricante     string `json:"fabricante" binding:"required"`
	DataFabricacao string `json:"dataFabricacao" binding:"required,brdate"`
	DataValidade   string `json:"dataValidade" binding:"required,brdate"`
}
