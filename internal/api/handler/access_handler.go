package handler

import (
	"net/http"

	"sales_system/internal/api/middleware"
	"sales_system/internal/app/service"
	"sales_system/internal/common"

	"github.com/go-chi/chi/v5"
)

// AccessHandler lets a logged-in client discover which modules and
// permissions its role carries, so the frontend can hide what the backend
// would reject anyway.
type AccessHandler struct {
	accessService *service.AccessService
}

func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

func (h *AccessHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listModules)
}

type ModulesResponse struct {
	Role        string   `json:"role"`
	Modules     []string `json:"modules"`
	Permissions []string `json:"permissions"`
}

func (h *AccessHandler) listModules(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No active session")
		return
	}

	common.RespondWithJSON(w, http.StatusOK, ModulesResponse{
		Role:        sess.Role,
		Modules:     h.accessService.AccessibleModules(sess),
		Permissions: h.accessService.PermissionsFor(sess),
	})
}
