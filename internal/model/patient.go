package model

type Patient struct {
	UUID           string `json:"uuid"`
	ID             int64  `json:"id,omitempty"`
	NomeCompleto   string `json:"nomeCompleto"`
	CPF            string `json:"cpf"`
	CNS            string `json:"cns"`
	Sexo           string `json:"sexo"`
	DataNascimento string `json:"dataNascimento"`
	Comunidade     string `json:"comunidade"`
	Etnia          string `json:"etnia"`
	Comorbidade    string `json:"comorbidade"`
	Ativo          bool   `json:"ativo"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (p Patient) Key() string { return p.UUID }

const DefaultComorbidade = "Nenhuma"

// UpdatePatientRequest is the body accepted for PUT /pessoa/:uuid.
type UpdatePatientRequest struct {
	NomeCompleto   string `json:"nomeCompleto" binding:"required"`
	CPF            string `json:"cpf" binding:"required,cpf"`
	Sexo           string `json:"sexo" binding:"required"`
	DataNascimento string `json:"dataNascimento" binding:"required,brdate"`
	Comorbidade    string `json:"comorbidade"`
	Etnia          string `json:"etnia" binding:"required"`
	CNS            string `json:"cns" binding:"required,cns"`
	Comunidade     string `json:"comunidade" binding:"required"`
	Ativo          *bool  `json:"ativo,omitempty"`
}

// SearchPatientRequest looks a person up by national id.
type SearchPatientRequest struct {
	CPF string `json:"cpf"`
}
