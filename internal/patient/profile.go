package patient

import (
	"context"
	"fmt"

	"github.com/jwalitptl/vacina-dashboard/internal/dates"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
)

// Profile is the logged-in user's page. FromToken is set when the user
// record could not be loaded and only the token's claims are shown.
type Profile struct {
	User      *model.User `json:"user"`
	Username  string      `json:"username"`
	Elevated  bool        `json:"elevated"`
	FromToken bool        `json:"fromToken"`
}

func (s *Service) Profile(ctx context.Context, sess *session.Session) *Profile {
	out := &Profile{Username: sess.Username(), Elevated: sess.Elevated()}
	u, err := s.currentUser(ctx, sess)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", sess.Username()).Msg("showing profile from token")
		out.FromToken = true
		return out
	}
	out.User = u
	return out
}

func (s *Service) currentUser(ctx context.Context, sess *session.Session) (*model.User, error) {
	users, err := s.backend.ListUsers(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Usuario == sess.Username() {
			return &users[i], nil
		}
	}
	return nil, apperrors.NotFound("Usuário não encontrado", fmt.Errorf("no user %q", sess.Username()))
}

// ProfileResult tells the caller whether the session must log in again,
// which happens when the username itself was changed.
type ProfileResult struct {
	Relogin bool `json:"relogin"`
}

// UpdateProfile saves the user's own record. CPF and role are kept from the
// stored user; a password change is accepted from elevated sessions only.
func (s *Service) UpdateProfile(ctx context.Context, sess *session.Session, req model.ProfileRequest) (*ProfileResult, error) {
	u, err := s.currentUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	birth, err := dates.BR(req.DataNascimento)
	if err != nil {
		return nil, apperrors.BadRequest("Data de nascimento inválida", err)
	}

	update := model.UpdateUserRequest{
		NomeCompleto:   req.NomeCompleto,
		Usuario:        req.Usuario,
		CPF:            u.CPF,
		Email:          req.Email,
		Telefone:       req.Telefone,
		DataNascimento: birth,
		Cargo:          req.Cargo,
		Role:           u.Role,
	}
	if req.Senha != "" {
		if !sess.Elevated() {
			return nil, apperrors.Forbidden(fmt.Errorf("password change requires an elevated session"))
		}
		update.Password = req.Senha
	}

	if err := s.backend.UpdateUser(ctx, sess.Token, u.UUID, update); err != nil {
		return nil, err
	}
	return &ProfileResult{Relogin: req.Usuario != sess.Username()}, nil
}
