// Package screens defines the dashboard's list pages and keeps one set of
// list controllers per session.
package screens

import (
	"strconv"
	"time"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/listing"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
)

const (
	NamePatients = "pacientes"
	NameVaccines = "vacinas"
	NameUsers    = "usuarios"
	NameHistory  = "historico"
)

// Names lists the screens in menu order.
var Names = []string{NamePatients, NameVaccines, NameUsers, NameHistory}

func Patients() *listing.Screen[model.Patient] {
	return &listing.Screen[model.Patient]{
		Name:     NamePatients,
		Title:    "Pacientes",
		PageSize: 10,
		Text: func(p model.Patient) []string {
			return []string{p.NomeCompleto, p.CPF, p.CNS}
		},
		Fields: []listing.Field[model.Patient]{
			{Name: "sexo", Match: listing.Exact(func(p model.Patient) string { return p.Sexo })},
			{Name: "comunidade", Match: listing.Substring(func(p model.Patient) string { return p.Comunidade })},
			{Name: "status", Gated: true, Match: func(p model.Patient, v string) bool {
				return strconv.FormatBool(p.Ativo) == v
			}},
		},
		Columns: []listing.Column{
			{Name: "nome", Title: "Nome Completo"},
			{Name: "cpf", Title: "CPF"},
			{Name: "nascimento", Title: "Data de Nascimento"},
			{Name: "sexo", Title: "Sexo"},
			{Name: "comunidade", Title: "Comunidade"},
			{Name: "status", Title: "Status", Gated: true},
		},
		Cells: func(p model.Patient) map[string]string {
			return map[string]string{
				"nome":       orPlaceholder(p.NomeCompleto),
				"cpf":        orPlaceholder(FormatCPF(p.CPF)),
				"nascimento": dates.Display(p.DataNascimento, Placeholder),
				"sexo":       orPlaceholder(p.Sexo),
				"comunidade": orPlaceholder(p.Comunidade),
				"status":     ActiveLabel(p.Ativo),
			}
		},
		Sort: listing.SortKeys[model.Patient]{
			CreatedAt: func(p model.Patient) string { return p.CreatedAt },
			ID:        func(p model.Patient) int64 { return p.ID },
			Name:      func(p model.Patient) string { return p.NomeCompleto },
		},
		Defaults: func(elevated bool) listing.Filter {
			if elevated {
				return listing.Filter{Fields: map[string]string{"status": "true"}}
			}
			return listing.Filter{}
		},
		Messages: listing.Messages{
			Noun:        "pacientes",
			FoundFormat: "%d paciente(s) encontrado(s)",
			NotFound:    "Nenhum paciente encontrado com estes filtros",
			Empty:       "Nenhum paciente cadastrado.",
		},
	}
}

// Vaccines evaluates expiry against now() on every filter and render.
func Vaccines(now func() time.Time) *listing.Screen[model.Vaccine] {
	status := func(v model.Vaccine) string { return dates.Status(v.DataValidade, now()) }
	return &listing.Screen[model.Vaccine]{
		Name:     NameVaccines,
		Title:    "Vacinas",
		PageSize: 5,
		Text: func(v model.Vaccine) []string {
			return []string{v.Nome, v.NumeroLote, ManufacturerLabel(v.Fabricante)}
		},
		Fields: []listing.Field[model.Vaccine]{
			{Name: "fabricante", Match: listing.Exact(func(v model.Vaccine) string { return v.Fabricante })},
			{Name: "status", Match: listing.Exact(status)},
		},
		Columns: []listing.Column{
			{Name: "nome", Title: "Nome"},
			{Name: "lote", Title: "Lote"},
			{Name: "fabricante", Title: "Fabricante"},
			{Name: "fabricacao", Title: "Data de Fabricação"},
			{Name: "validade", Title: "Data de Validade"},
			{Name: "status", Title: "Status"},
		},
		Cells: func(v model.Vaccine) map[string]string {
			return map[string]string{
				"nome":       orPlaceholder(v.Nome),
				"lote":       orPlaceholder(v.NumeroLote),
				"fabricante": orPlaceholder(ManufacturerLabel(v.Fabricante)),
				"fabricacao": dates.Display(v.DataFabricacao, Placeholder),
				"validade":   dates.Display(v.DataValidade, Placeholder),
				"status":     VaccineStatusLabel(status(v)),
			}
		},
		Sort: listing.SortKeys[model.Vaccine]{
			CreatedAt: func(v model.Vaccine) string { return v.CreatedAt },
			ID:        func(v model.Vaccine) int64 { return v.ID },
			Name:      func(v model.Vaccine) string { return v.Nome },
		},
		Messages: listing.Messages{
			Noun:        "vacinas",
			FoundFormat: "%d vacina(s) encontrada(s)",
			NotFound:    "Nenhuma vacina encontrada com estes filtros",
			Empty:       "Nenhuma vacina cadastrada.",
		},
	}
}

func Users() *listing.Screen[model.User] {
	return &listing.Screen[model.User]{
		Name:     NameUsers,
		Title:    "Usuários",
		PageSize: 5,
		Elevated: true,
		Text: func(u model.User) []string {
			return []string{u.NomeCompleto, u.Usuario, u.CPF, u.Email}
		},
		Fields: []listing.Field[model.User]{
			{Name: "cargo", Match: listing.Exact(func(u model.User) string { return u.Cargo })},
			{Name: "role", Match: listing.Exact(func(u model.User) string { return u.Role })},
		},
		Columns: []listing.Column{
			{Name: "nome", Title: "Nome Completo"},
			{Name: "usuario", Title: "Usuário"},
			{Name: "email", Title: "E-mail"},
			{Name: "cargo", Title: "Cargo"},
			{Name: "role", Title: "Perfil"},
			{Name: "telefone", Title: "Telefone"},
		},
		Cells: func(u model.User) map[string]string {
			return map[string]string{
				"nome":     orPlaceholder(u.NomeCompleto),
				"usuario":  orPlaceholder(u.Usuario),
				"email":    orPlaceholder(u.Email),
				"cargo":    CargoLabel(u.Cargo),
				"role":     RoleLabel(u.Role),
				"telefone": FormatPhone(u.Telefone),
			}
		},
		Sort: listing.SortKeys[model.User]{
			CreatedAt: func(u model.User) string { return u.CreatedAt },
			ID:        func(u model.User) int64 { return u.ID },
			Name:      func(u model.User) string { return u.NomeCompleto },
		},
		Messages: listing.Messages{
			Noun:        "usuários",
			FoundFormat: "%d usuário(s) encontrado(s)",
			NotFound:    "Nenhum usuário encontrado com estes filtros",
			Empty:       "Nenhum usuário cadastrado.",
		},
	}
}

// History lists the vaccinations of the selected patient.
func History() *listing.Screen[model.Vaccination] {
	return &listing.Screen[model.Vaccination]{
		Name:     NameHistory,
		Title:    "Histórico Vacinal",
		PageSize: 5,
		Text: func(v model.Vaccination) []string {
			return []string{v.VaccineName()}
		},
		Columns: []listing.Column{
			{Name: "vacina", Title: "Vacina"},
			{Name: "aplicacao", Title: "Data de Aplicação"},
			{Name: "proxima", Title: "Próxima Dose"},
		},
		Cells: func(v model.Vaccination) map[string]string {
			return map[string]string{
				"vacina":    orPlaceholder(v.VaccineName()),
				"aplicacao": dates.Display(v.DataAplicacao, dates.DetailPlaceholder),
				"proxima":   dates.Display(v.DataProximaDose, NoNextDoseText),
			}
		},
		Sort: listing.SortKeys[model.Vaccination]{
			CreatedAt: func(v model.Vaccination) string { return v.CreatedAt },
			ID:        func(v model.Vaccination) int64 { return v.ID },
			Name:      func(v model.Vaccination) string { return v.VaccineName() },
		},
		Messages: listing.Messages{
			Noun:        "vacinações",
			FoundFormat: "%d vacinação(ões) encontrada(s)",
			NotFound:    "Nenhuma vacinação encontrada com estes filtros",
			Empty:       "Nenhuma vacinação registrada para este paciente.",
		},
	}
}
