package model

type PersonRef struct {
	UUID         string `json:"uuid"`
	NomeCompleto string `json:"nomeCompleto,omitempty"`
	CPF          string `json:"cpf,omitempty"`
}

type VaccineRef struct {
	UUID string `json:"uuid"`
	Nome string `json:"nome"`
}

// Vaccination is one administered dose. The backend sends either nested
// pessoa/vacina objects or the flat pessoaUuid/vacinaUuid fields.
type Vaccination struct {
	UUID            string      `json:"uuid"`
	ID              int64       `json:"id,omitempty"`
	Pessoa          *PersonRef  `json:"pessoa,omitempty"`
	Vacina          *VaccineRef `json:"vacina,omitempty"`
	PessoaUUID      string      `json:"pessoaUuid,omitempty"`
	VacinaUUID      string      `json:"vacinaUuid,omitempty"`
	DataAplicacao   string      `json:"dataAplicacao"`
	DataProximaDose string      `json:"dataProximaDose,omitempty"`
	CreatedAt       string      `json:"createdAt,omitempty"`
}

func (v Vaccination) Key() string { return v.UUID }

// PersonID returns the vaccinated person's identifier, or "".
func (v Vaccination) PersonID() string {
	if v.Pessoa != nil && v.Pessoa.UUID != "" {
		return v.Pessoa.UUID
	}
	return v.PessoaUUID
}

func (v Vaccination) VaccineID() string {
	if v.Vacina != nil && v.Vacina.UUID != "" {
		return v.Vacina.UUID
	}
	return v.VacinaUUID
}

// VaccineName returns the vaccine name, or "" when it was not embedded.
func (v Vaccination) VaccineName() string {
	if v.Vacina == nil {
		return ""
	}
	return v.Vacina.Nome
}

type UpdateVaccinationRequest struct {
	PessoaUUID      string  `json:"pessoaUuid" binding:"required,uuid"`
	VacinaUUID      string  `json:"vacinaUuid" binding:"required,uuid"`
	DataAplicacao   string  `json:"dataAplicacao" binding:"required,brdate"`
	DataProximaDose *string `json:"dataProximaDose" binding:"omitempty,brdate"`
}
