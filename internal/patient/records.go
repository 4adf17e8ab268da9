package patient

import (
	"context"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// UpdateVaccine sends the edited vaccine with its dates as DD/MM/YYYY.
func (s *Service) UpdateVaccine(ctx context.Context, sess *session.Session, id string, req model.UpdateVaccineRequest) error {
	var err error
	if req.DataFabricacao, err = dates.BR(req.DataFabricacao); err != nil {
		return apperrors.BadRequest("Data de fabricação inválida", err)
	}
	if req.DataValidade, err = dates.BR(req.DataValidade); err != nil {
		return apperrors.BadRequest("Data de validade inválida", err)
	}
	return s.backend.UpdateVaccine(ctx, sess.Token, id, req)
}

func (s *Service) DeleteVaccine(ctx context.Context, sess *session.Session, id string) error {
	return s.backend.DeleteVaccine(ctx, sess.Token, id)
}

// UpdateVaccination sends an edited dose. An empty next dose is sent as
// null so the backend clears it.
func (s *Service) UpdateVaccination(ctx context.Context, sess *session.Session, id string, req model.UpdateVaccinationRequest) error {
	applied, err := dates.BR(req.DataAplicacao)
	if err != nil {
		return apperrors.BadRequest("Data de aplicação inválida", err)
	}
	req.DataAplicacao = applied
	if req.DataProximaDose != nil {
		if *req.DataProximaDose == "" {
			req.DataProximaDose = nil
		} else {
			next, err := dates.BR(*req.DataProximaDose)
			if err != nil {
				return apperrors.BadRequest("Data da próxima dose inválida", err)
			}
			req.DataProximaDose = &next
		}
	}
	return s.backend.UpdateVaccination(ctx, sess.Token, id, req)
}

func (s *Service) DeleteVaccination(ctx context.Context, sess *session.Session, id string) error {
	return s.backend.DeleteVaccination(ctx, sess.Token, id)
}
