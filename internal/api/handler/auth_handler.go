package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sales_system/internal/api/middleware"
	"sales_system/internal/app/service"
	"sales_system/internal/common"
	"sales_system/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/reset-password", h.resetPassword)
}

func (h *AuthHandler) RegisterPrivateRoutes(r chi.Router) {
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Post("/change-password", h.changePassword)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Username == "" || req.Password == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	sess, err := h.authService.Authenticate(r.Context(), req.Username, req.Password, r.RemoteAddr)
	if err != nil {
		// Responses stay generic: inactive accounts and bad credentials are
		// indistinguishable to the caller, only the audit log has the kind.
		switch {
		case errors.Is(err, common.ErrLockedOut):
			common.RespondWithError(w, http.StatusLocked, "Too many failed login attempts. Please try again later.")
		case errors.Is(err, common.ErrInvalidCredentials), errors.Is(err, common.ErrInactiveAccount):
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			common.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	token, err := security.GenerateSessionToken(sess)
	if err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	common.RespondWithJSON(w, http.StatusOK, LoginResponse{
		Token:    token,
		UserID:   sess.UserID,
		Username: sess.Username,
		Role:     sess.Role,
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No active session")
		return
	}
	if err := h.authService.Logout(r.Context(), sess.ID); err != nil {
		common.RespondWithError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Logged out")
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No active session")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sess)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No active session")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	err := h.authService.ChangePassword(r.Context(), sess.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrValidation):
			common.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrInvalidCredentials):
			common.RespondWithError(w, http.StatusUnauthorized, "Current password is invalid")
		default:
			common.RespondWithError(w, http.StatusInternalServerError, "Password change failed")
		}
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password changed")
}

type ResetPasswordRequest struct {
	Username string `json:"username"`
}

type ResetPasswordResponse struct {
	Sent bool `json:"sent"`
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Username == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Username is required")
		return
	}

	sent := h.authService.ResetPassword(r.Context(), req.Username)
	common.RespondWithJSON(w, http.StatusOK, ResetPasswordResponse{Sent: sent})
}
