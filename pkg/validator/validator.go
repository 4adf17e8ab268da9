package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
)

// Rules returns the custom binding tags used by the registry request bodies.
func Rules() map[string]validator.Func {
	return map[string]validator.Func{
		"cpf":    digits(11),
		"cns":    digits(15),
		"brdate": date,
	}
}

// Messages returns the pt-BR text shown for each failed tag.
func Messages() map[string]string {
	return map[string]string{
		"required": "Campo obrigatório",
		"cpf":      "O CPF deve conter 11 dígitos",
		"cns":      "O CNS deve conter 15 dígitos",
		"brdate":   "Data inválida",
		"uuid":     "Identificador inválido",
		"email":    "E-mail inválido",
		"min":      "A senha deve ter pelo menos 4 caracteres",
		"eqfield":  "As senhas não coincidem",
	}
}

// Register installs Rules on v.
func Register(v *validator.Validate) error {
	for tag, fn := range Rules() {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func digits(n int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return IsDigits(fl.Field().String(), n)
	}
}

func date(fl validator.FieldLevel) bool {
	_, err := dates.Parse(fl.Field().String())
	return err == nil
}

// IsDigits reports whether s is exactly n ASCII digits.
func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
