package model

type User struct {
	UUID           string `json:"uuid"`
	ID             int64  `json:"id,omitempty"`
	NomeCompleto   string `json:"nomeCompleto"`
	Usuario        string `json:"usuario"`
	CPF            string `json:"cpf"`
	Email          string `json:"email"`
	Cargo          string `json:"cargo"`
	Role           string `json:"role"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"dataNascimento"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

func (u User) Key() string { return u.UUID }

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// UpdateUserRequest is the body accepted for PUT /usuario/:uuid.
type UpdateUserRequest struct {
	NomeCompleto   string `json:"nomeCompleto" binding:"required"`
	Usuario        string `json:"usuario" binding:"required"`
	CPF            string `json:"cpf" binding:"required,cpf"`
	Email          string `json:"email" binding:"required,email"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"dataNascimento" binding:"omitempty,brdate"`
	Cargo          string `json:"cargo" binding:"required"`
	Role           string `json:"role,omitempty"`
	Password       string `json:"password,omitempty"`
}

// ProfileRequest is the self-service edit form. CPF and role are taken from
// the stored user; a new password is accepted from elevated sessions only.
type ProfileRequest struct {
	NomeCompleto   string `json:"nomeCompleto" binding:"required"`
	Usuario        string `json:"usuario" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Telefone       string `json:"telefone"`
	DataNascimento string `json:"dataNascimento" binding:"required,brdate"`
	Cargo          string `json:"cargo" binding:"required"`
	Senha          string `json:"senha" binding:"omitempty,min=4"`
	ConfirmarSenha string `json:"confirmarSenha" binding:"omitempty,eqfield=Senha"`
}
