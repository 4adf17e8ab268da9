package screens

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/vacina-dashboard/internal/listing"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func sess(sub, role string) *session.Session {
	return &session.Session{Token: "tok-" + sub, Claims: &session.Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "123.456.789-01", FormatCPF("12345678901"))
	assert.Equal(t, "123", FormatCPF("123"))
	assert.Equal(t, "(11) 98765-4321", FormatPhone("11987654321"))
	assert.Equal(t, "(11) 3456-7890", FormatPhone("(11) 3456-7890"))
	assert.Equal(t, "Merck Sharp & Dohme", ManufacturerLabel("MERCK_SHARP_DOHME"))
	assert.Equal(t, "OUTRA", ManufacturerLabel("OUTRA"))
	assert.Equal(t, "Técnico de Enfermagem", CargoLabel("TECNICO_DE_ENFERMAGEM"))
	assert.Equal(t, Placeholder, CargoLabel(""))
	assert.Equal(t, "Administrador", RoleLabel("ADMIN"))
	assert.Equal(t, "Usuário", RoleLabel("USER"))
}

func TestVaccineStatusFilter(t *testing.T) {
	ctl := listing.New(Vaccines(func() time.Time { return today }), false, nil)
	ctl.Load([]model.Vaccine{
		{UUID: "a", Nome: "Coronavac", Fabricante: "SINOVAC_BUTANTAN", DataValidade: "2024-06-15"},
		{UUID: "b", Nome: "Pfizer", Fabricante: "PFIZER_BIONTECH", DataValidade: "14/06/2024"},
		{UUID: "c", Nome: "Sem validade", Fabricante: "JANSSEN"},
	})

	v := ctl.ApplyFilter(listing.Filter{Fields: map[string]string{"status": "valida"}})
	require.Len(t, v.Records, 1)
	assert.Equal(t, "a", v.Records[0].UUID)

	v = ctl.ApplyFilter(listing.Filter{Text: "biontech"})
	require.Len(t, v.Rows, 1)
	assert.Contains(t, v.Rows[0].Cells, "Pfizer Biontech")
	assert.Contains(t, v.Rows[0].Cells, "Vencida")
	assert.Equal(t, "1 vacina(s) encontrada(s)", v.Result)
}

func TestPatientCellsAndGatedStatus(t *testing.T) {
	recs := []model.Patient{{UUID: "p", NomeCompleto: "Ana", CPF: "12345678901", DataNascimento: "2000-01-02", Ativo: false}}

	plain := listing.New(Patients(), false, nil)
	plain.Load(recs)
	v := plain.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, []string{"Ana", "123.456.789-01", "02/01/2000", Placeholder, Placeholder}, v.Rows[0].Cells)

	admin := listing.New(Patients(), true, nil)
	admin.Load(recs)
	assert.True(t, admin.View().Empty, "inactive patients are hidden by the elevated default")
	v = admin.ApplyFilter(listing.Filter{Fields: map[string]string{"status": "false"}})
	require.Len(t, v.Rows, 1)
	assert.Equal(t, "Inativo", v.Rows[0].Cells[5])
}

func TestHistoryNextDosePlaceholder(t *testing.T) {
	ctl := listing.New(History(), false, nil)
	ctl.Load([]model.Vaccination{{UUID: "v", Vacina: &model.VaccineRef{Nome: "BCG"}, DataAplicacao: "2024-05-01"}})
	v := ctl.View()
	require.Len(t, v.Rows, 1)
	assert.Equal(t, []string{"BCG", "01/05/2024", NoNextDoseText}, v.Rows[0].Cells)
	assert.Equal(t, "Mostrando 1 a 1 de 1 vacinações", v.Info)
}

func TestRegistry(t *testing.T) {
	var tokens []string
	reg := NewRegistry(Config{Debounce: 10 * time.Millisecond, Now: func() time.Time { return today }}, Loaders{
		Patients: func(ctx context.Context, s *session.Session) ([]model.Patient, error) {
			tokens = append(tokens, s.Token)
			out := make([]model.Patient, 23)
			for i := range out {
				out[i] = model.Patient{UUID: fmt.Sprintf("p%d", i), ID: int64(i + 1), NomeCompleto: fmt.Sprintf("Paciente %d", i), Ativo: true}
			}
			return out, nil
		},
	})

	joao := sess("joao", "USER")
	b, err := reg.Screen(joao, NamePatients)
	require.NoError(t, err)
	require.NoError(t, b.Ensure(context.Background()))
	view := b.View().(listing.PageView[model.Patient])
	assert.Equal(t, 3, view.TotalPages)

	again, err := reg.Screen(sess("joao", "USER"), NamePatients)
	require.NoError(t, err)
	assert.Same(t, b, again)
	assert.Equal(t, 1, reg.Len())

	renewed := sess("joao", "USER")
	renewed.Token = "tok-renewed"
	again, _ = reg.Screen(renewed, NamePatients)
	require.NoError(t, again.Reload(context.Background()))
	assert.Equal(t, []string{"tok-joao", "tok-renewed"}, tokens)

	_, err = reg.Screen(joao, NameUsers)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	_, err = reg.Screen(joao, "nada")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	admin, err := reg.Screen(sess("maria", "ADMIN"), NameUsers)
	require.NoError(t, err)
	assert.True(t, admin.Elevated())
	assert.Error(t, admin.Reload(context.Background()), "no users loader configured")

	reg.Forget(joao)
	assert.Equal(t, 1, reg.Len())
}

func TestBindingInputPublishes(t *testing.T) {
	reg := NewRegistry(Config{Debounce: 10 * time.Millisecond}, Loaders{})
	b, err := reg.Screen(sess("ana", "USER"), NameHistory)
	require.NoError(t, err)

	ch, cancel := b.Subscribe()
	defer cancel()

	b.Input(listing.Filter{Text: "b"})
	b.Input(listing.Filter{Text: "bcg"})

	select {
	case v := <-ch:
		assert.Equal(t, "bcg", v.(listing.PageView[model.Vaccination]).Filter.Text)
	case <-time.After(time.Second):
		t.Fatal("debounced view was not published")
	}
}
