package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/vacina-dashboard/internal/backend"
	"github.com/jwalitptl/vacina-dashboard/internal/handler"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/patient"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/internal/session"
	apperrors "github.com/jwalitptl/vacina-dashboard/pkg/errors"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const (
	MsgPatientUpdated     = "Paciente atualizado com sucesso"
	MsgPatientDeleted     = "Paciente excluído com sucesso"
	MsgPatientReactivated = "Paciente reativado com sucesso"
	MsgVaccineUpdated     = "Vacina atualizada com sucesso"
	MsgVaccineDeleted     = "Vacina excluída com sucesso"
	MsgDoseUpdated        = "Vacinação atualizada com sucesso"
	MsgDoseDeleted        = "Vacinação excluída com sucesso"
)

type Handler struct {
	service  *patient.Service
	registry *screens.Registry
	logger   zerolog.Logger
}

func NewHandler(service *patient.Service, registry *screens.Registry, logger zerolog.Logger) *Handler {
	return &Handler{service: service, registry: registry, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/pacientes")
	{
		patients.GET("/:cpf", h.GetPatient)
		patients.PUT("/:uuid", h.UpdatePatient)
		patients.DELETE("/:uuid", h.DeletePatient)
		patients.POST("/:uuid/reativar", h.ReactivatePatient)
	}

	vaccines := r.Group("/vacinas")
	{
		vaccines.PUT("/:uuid", h.UpdateVaccine)
		vaccines.DELETE("/:uuid", h.DeleteVaccine)
	}

	doses := r.Group("/vacinacoes")
	{
		doses.PUT("/:uuid", h.UpdateVaccination)
		doses.DELETE("/:uuid", h.DeleteVaccination)
	}
}

// GetPatient finds a patient by CPF, selects them for the session and
// answers their vaccination history.
func (h *Handler) GetPatient(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	d, err := h.service.Detail(c.Request.Context(), s, c.Param("cpf"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.reload(c, s, screens.NameHistory)
	httputil.RespondWithSuccess(c, d)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.Bind(c, &req) {
		return
	}
	if err := h.service.Update(c.Request.Context(), s, id, req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.reload(c, s, screens.NamePatients)
	httputil.RespondWithMessage(c, http.StatusOK, MsgPatientUpdated)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), s, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.remove(s, screens.NamePatients, id)
	httputil.RespondWithMessage(c, http.StatusOK, MsgPatientDeleted)
}

// ReactivatePatient resends the listed record of an inactive patient.
func (h *Handler) ReactivatePatient(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	b, err := h.registry.Screen(s, screens.NamePatients)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if err := b.Ensure(c.Request.Context()); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	rec, found := b.Find(id)
	if !found {
		httputil.RespondWithError(c, apperrors.NotFound(backend.MsgPatientNotFound, nil))
		return
	}
	if err := h.service.Reactivate(c.Request.Context(), s, rec.(model.Patient)); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.reload(c, s, screens.NamePatients)
	httputil.RespondWithMessage(c, http.StatusOK, MsgPatientReactivated)
}

func (h *Handler) UpdateVaccine(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.UpdateVaccineRequest
	if !handler.Bind(c, &req) {
		return
	}
	if err := h.service.UpdateVaccine(c.Request.Context(), s, id, req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.reload(c, s, screens.NameVaccines)
	httputil.RespondWithMessage(c, http.StatusOK, MsgVaccineUpdated)
}

func (h *Handler) DeleteVaccine(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteVaccine(c.Request.Context(), s, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.remove(s, screens.NameVaccines, id)
	httputil.RespondWithMessage(c, http.StatusOK, MsgVaccineDeleted)
}

func (h *Handler) UpdateVaccination(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	var req model.UpdateVaccinationRequest
	if !handler.Bind(c, &req) {
		return
	}
	if err := h.service.UpdateVaccination(c.Request.Context(), s, id, req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.reload(c, s, screens.NameHistory)
	httputil.RespondWithMessage(c, http.StatusOK, MsgDoseUpdated)
}

func (h *Handler) DeleteVaccination(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	id, ok := handler.UUIDParam(c, "uuid")
	if !ok {
		return
	}
	if err := h.service.DeleteVaccination(c.Request.Context(), s, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.remove(s, screens.NameHistory, id)
	httputil.RespondWithMessage(c, http.StatusOK, MsgDoseDeleted)
}

// reload refreshes a screen after an edit. Failures only leave the screen
// stale.
func (h *Handler) reload(c *gin.Context, s *session.Session, name string) {
	b, err := h.registry.Screen(s, name)
	if err != nil {
		return
	}
	if err := b.Reload(c.Request.Context()); err != nil {
		h.logger.Warn().Err(err).Str("screen", name).Str("user", s.Username()).Msg("failed to refresh screen")
	}
}

func (h *Handler) remove(s *session.Session, name, id string) {
	if b, err := h.registry.Screen(s, name); err == nil {
		b.Remove(id)
	}
}
