// Package patient serves the patient detail page and the profile page:
// lookups, vaccination history and the edit operations behind them,
// including those of vaccines and doses.
package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// Backend is the part of the registry client used here.
type Backend interface {
	FindPatientByCPF(ctx context.Context, token, cpf string) (*model.Patient, error)
	ListVaccinations(ctx context.Context, token string) ([]model.Vaccination, error)
	ListUsers(ctx context.Context, token string) ([]model.User, error)
	GetVaccine(ctx context.Context, token, id string) (*model.Vaccine, error)
	UpdatePatient(ctx context.Context, token, id string, req model.UpdatePatientRequest) error
	DeletePatient(ctx context.Context, token, id string) error
	UpdateVaccine(ctx context.Context, token, id string, req model.UpdateVaccineRequest) error
	DeleteVaccine(ctx context.Context, token, id string) error
	UpdateVaccination(ctx context.Context, token, id string, req model.UpdateVaccinationRequest) error
	DeleteVaccination(ctx context.Context, token, id string) error
	UpdateUser(ctx context.Context, token, id string, req model.UpdateUserRequest) error
}

const MsgNoPatientSelected = "Nenhum paciente selecionado"

type Service struct {
	backend Backend
	store   session.Store
	logger  zerolog.Logger
}

func NewService(backend Backend, store session.Store, logger zerolog.Logger) *Service {
	return &Service{backend: backend, store: store, logger: logger}
}

// Detail is the patient page: the person and their vaccination history.
type Detail struct {
	Patient *model.Patient      `json:"patient"`
	History []model.Vaccination `json:"history"`
}

// Find looks the patient up by CPF and remembers them as the session's
// selected patient.
func (s *Service) Find(ctx context.Context, sess *session.Session, cpf string) (*model.Patient, error) {
	cpf = strings.TrimSpace(cpf)
	if cpf == "" {
		return nil, apperrors.BadRequest("CPF do paciente não fornecido.", nil)
	}
	p, err := s.backend.FindPatientByCPF(ctx, sess.Token, cpf)
	if err != nil {
		return nil, err
	}

	st, err := s.store.Get(ctx, sess.Key())
	if err != nil {
		s.logger.Warn().Err(err).Str("user", sess.Username()).Msg("session state unavailable")
	}
	st.SelectedPatient = p
	if err := s.store.Save(ctx, sess.Key(), st); err != nil {
		s.logger.Warn().Err(err).Str("user", sess.Username()).Msg("failed to remember selected patient")
	}
	return p, nil
}

func (s *Service) Detail(ctx context.Context, sess *session.Session, cpf string) (*Detail, error) {
	p, err := s.Find(ctx, sess, cpf)
	if err != nil {
		return nil, err
	}
	history, err := s.History(ctx, sess.Token, p.UUID)
	if err != nil {
		return nil, err
	}
	return &Detail{Patient: p, History: history}, nil
}

// Selected returns the session's selected patient.
func (s *Service) Selected(ctx context.Context, sess *session.Session) (*model.Patient, error) {
	st, err := s.store.Get(ctx, sess.Key())
	if err != nil {
		return nil, err
	}
	if st.SelectedPatient == nil {
		return nil, apperrors.NotFound(MsgNoPatientSelected, nil)
	}
	return st.SelectedPatient, nil
}

// SelectedHistory loads the history of the session's selected patient.
func (s *Service) SelectedHistory(ctx context.Context, sess *session.Session) ([]model.Vaccination, error) {
	p, err := s.Selected(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.History(ctx, sess.Token, p.UUID)
}

// History returns the vaccinations of patientID. Events without an
// embedded vaccine name are completed with one vaccine lookup each, in order.
func (s *Service) History(ctx context.Context, token, patientID string) ([]model.Vaccination, error) {
	all, err := s.backend.ListVaccinations(ctx, token)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	out := make([]model.Vaccination, 0)
	for _, v := range all {
		if v.PersonID() != patientID {
			continue
		}
		if v.VaccineName() == "" {
			if id := v.VaccineID(); id != "" {
				name, ok := names[id]
				if !ok {
					name = s.vaccineName(ctx, token, id)
					names[id] = name
				}
				v.Vacina = &model.VaccineRef{UUID: id, Nome: name}
			}
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) vaccineName(ctx context.Context, token, id string) string {
	vac, err := s.backend.GetVaccine(ctx, token, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("vaccine", id).Msg("failed to complete vaccine name")
		return ""
	}
	return vac.Nome
}

// Update sends the edited patient. Dates are sent as DD/MM/YYYY and a
// missing comorbidade becomes "Nenhuma".
func (s *Service) Update(ctx context.Context, sess *session.Session, id string, req model.UpdatePatientRequest) error {
	birth, err := dates.BR(req.DataNascimento)
	if err != nil {
		return apperrors.BadRequest("Data de nascimento inválida", err)
	}
	req.DataNascimento = birth
	if strings.TrimSpace(req.Comorbidade) == "" {
		req.Comorbidade = model.DefaultComorbidade
	}
	if err := s.backend.UpdatePatient(ctx, sess.Token, id, req); err != nil {
		return err
	}
	s.forgetIfSelected(ctx, sess, id)
	return nil
}

// Reactivate resends p unchanged so the backend marks it active again.
func (s *Service) Reactivate(ctx context.Context, sess *session.Session, p model.Patient) error {
	if !sess.Elevated() {
		return apperrors.Forbidden(fmt.Errorf("reactivation requires an elevated session"))
	}
	ativo := true
	return s.Update(ctx, sess, p.UUID, model.UpdatePatientRequest{
		NomeCompleto:   p.NomeCompleto,
		CPF:            p.CPF,
		Sexo:           p.Sexo,
		DataNascimento: p.DataNascimento,
		Comorbidade:    p.Comorbidade,
		Etnia:          p.Etnia,
		CNS:            p.CNS,
		Comunidade:     p.Comunidade,
		Ativo:          &ativo,
	})
}

func (s *Service) Delete(ctx context.Context, sess *session.Session, id string) error {
	if err := s.backend.DeletePatient(ctx, sess.Token, id); err != nil {
		return err
	}
	s.forgetIfSelected(ctx, sess, id)
	return nil
}

func (s *Service) forgetIfSelected(ctx context.Context, sess *session.Session, id string) {
	st, err := s.store.Get(ctx, sess.Key())
	if err != nil || st.SelectedPatient == nil || st.SelectedPatient.UUID != id {
		return
	}
	st.SelectedPatient = nil
	if err := s.store.Save(ctx, sess.Key(), st); err != nil {
		s.logger.Warn().Err(err).Str("user", sess.Username()).Msg("failed to clear selected patient")
	}
}
