package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/vacina-dashboard/internal/handler"
	"github.com/jwalitptl/vacina-dashboard/internal/middleware"
	"github.com/jwalitptl/vacina-dashboard/internal/model"
	"github.com/jwalitptl/vacina-dashboard/internal/patient"
	"github.com/jwalitptl/vacina-dashboard/internal/screens"
	"github.com/jwalitptl/vacina-dashboard/pkg/httputil"
)

const (
	MsgProfileUpdated = "Perfil atualizado com sucesso"
	MsgProfileRelogin = "Perfil atualizado. Faça login novamente."
)

// Handler serves the logged-in user's own profile.
type Handler struct {
	service  *patient.Service
	registry *screens.Registry
}

func NewHandler(service *patient.Service, registry *screens.Registry) *Handler {
	return &Handler{service: service, registry: registry}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profile := r.Group("/perfil")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.service.Profile(c.Request.Context(), s))
}

// UpdateProfile saves the profile form. Renaming the user ends the session,
// since the token's subject no longer matches.
func (h *Handler) UpdateProfile(c *gin.Context) {
	s, ok := handler.Session(c)
	if !ok {
		return
	}
	var req model.ProfileRequest
	if !handler.Bind(c, &req) {
		return
	}
	res, err := h.service.UpdateProfile(c.Request.Context(), s, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	msg := MsgProfileUpdated
	if res.Relogin {
		middleware.ClearToken(c)
		h.registry.Forget(s)
		msg = MsgProfileRelogin
	}
	c.JSON(http.StatusOK, &httputil.Response{Status: "success", Message: msg, Data: res})
}
