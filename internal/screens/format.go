package screens

import (
	"strings"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
)

const (
	Placeholder    = dates.ListPlaceholder
	NoNextDoseText = "Não há próxima dose agendada"
)

var manufacturers = map[string]string{
	"PFIZER_BIONTECH":     "Pfizer Biontech",
	"ASTRAZENECA_FIOCRUZ": "AstraZeneca Fiocruz",
	"SINOVAC_BUTANTAN":    "Sinovac Butantan",
	"JANSSEN":             "Janssen",
	"MODERNA":             "Moderna",
	"SERUM_INSTITUTE":     "Serum Institute of India",
	"SANOFI_PASTEUR":      "Sanofi Pasteur",
	"GLAXOSMITHKLINE":     "GlaxoSmithKline",
	"MERCK_SHARP_DOHME":   "Merck Sharp & Dohme",
}

var cargos = map[string]string{
	"TECNICO":               "Técnico",
	"ENFERMEIRO":            "Enfermeiro",
	"TECNICO_DE_ENFERMAGEM": "Técnico de Enfermagem",
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCPF renders 11 digits as 000.000.000-00 and leaves anything else as is.
func FormatCPF(cpf string) string {
	d := digitsOf(cpf)
	if len(d) != 11 {
		return cpf
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatPhone renders mobile (11 digits) and landline (10 digits) numbers.
func FormatPhone(phone string) string {
	d := digitsOf(phone)
	switch len(d) {
	case 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	case 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	}
	return phone
}

func ManufacturerLabel(code string) string {
	if label, ok := manufacturers[code]; ok {
		return label
	}
	return code
}

func CargoLabel(code string) string {
	if code == "" {
		return Placeholder
	}
	if label, ok := cargos[code]; ok {
		return label
	}
	return code
}

func RoleLabel(role string) string {
	if role == model.RoleAdmin {
		return "Administrador"
	}
	return "Usuário"
}

func ActiveLabel(ativo bool) string {
	if ativo {
		return "Ativo"
	}
	return "Inativo"
}

func VaccineStatusLabel(status string) string {
	if status == dates.StatusValid {
		return "Válida"
	}
	return "Vencida"
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}
