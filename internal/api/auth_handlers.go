package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/lastara-storefront/internal/api/middleware"
	"github.com/example/lastara-storefront/internal/auth"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthHandlers handles operator authentication requests
type AuthHandlers struct {
	operatorService *operator.Service
	queryHandler    *query.Handler
	jwtService      *auth.JWTService
	secureCookies   bool
	logger          *zap.Logger
	now             func() time.Time
}

// NewAuthHandlers creates a new AuthHandlers instance. secureCookies forces the
// Secure flag for deployments behind a TLS-terminating proxy.
func NewAuthHandlers(operatorService *operator.Service, queryHandler *query.Handler, jwtService *auth.JWTService, secureCookies bool, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		operatorService: operatorService,
		queryHandler:    queryHandler,
		jwtService:      jwtService,
		secureCookies:   secureCookies,
		logger:          logger.Named("auth"),
		now:             time.Now,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Operator OperatorResponse `json:"operator"`
	Message  string           `json:"message,omitempty"`
}

// OperatorResponse represents operator data in responses
type OperatorResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toOperatorResponse(op *query.OperatorReadModel) OperatorResponse {
	return OperatorResponse{
		ID:          op.ID,
		Email:       op.Email,
		Name:        op.Name,
		Role:        op.Role,
		LastLoginAt: op.LastLoginAt,
		CreatedAt:   op.CreatedAt,
	}
}

// Login handles operator login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	op, exists, err := h.queryHandler.GetOperatorByEmail(operator.NormalizeEmail(req.Email))
	if err != nil {
		h.serverError(w, "look up operator", err)
		return
	}
	if !exists || !auth.CheckPassword(req.Password, op.PasswordHash) {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}
	if !op.IsActive {
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	if err := h.startSession(w, r, op); err != nil {
		h.serverError(w, "start session", err)
		return
	}

	h.logger.Info("operator logged in", zap.String("operator_id", op.ID))
	respondJSON(w, http.StatusOK, AuthResponse{
		Operator: toOperatorResponse(op),
		Message:  "Login successful",
	})
}

// Logout ends the current session when the caller is authenticated; cookies are cleared regardless
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.OperatorFrom(r.Context()); ok {
		sessionID := ""
		if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
			sessionID = cookie.Value
		}
		if err := h.operatorService.RecordLogout(r.Context(), claims.OperatorID, sessionID); err != nil {
			h.logger.Warn("failed to record logout", zap.String("operator_id", claims.OperatorID), zap.Error(err))
		}
	}

	h.clearAuthCookies(w, r)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logout successful",
	})
}

// Refresh rotates the token pair. The old session is closed and a new one opened.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	operatorID, sessionID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.rejectRefresh(w, r, "Invalid refresh token")
		return
	}

	session, exists, err := h.queryHandler.GetSession(sessionID)
	if err != nil {
		h.serverError(w, "look up session", err)
		return
	}
	if !exists || session.OperatorID != operatorID {
		h.rejectRefresh(w, r, "Session not found")
		return
	}
	if h.now().After(session.ExpiresAt) {
		h.rejectRefresh(w, r, "Session expired")
		return
	}
	if auth.HashToken(refreshCookie.Value) != session.RefreshTokenHash {
		h.rejectRefresh(w, r, "Invalid refresh token")
		return
	}

	op, exists, err := h.queryHandler.GetOperator(operatorID)
	if err != nil {
		h.serverError(w, "look up operator", err)
		return
	}
	if !exists {
		h.rejectRefresh(w, r, "Operator not found")
		return
	}
	if !op.IsActive {
		h.clearAuthCookies(w, r)
		respondJSONError(w, "Account is deactivated", http.StatusForbidden)
		return
	}

	if err := h.operatorService.RecordLogout(r.Context(), operatorID, sessionID); err != nil {
		h.serverError(w, "close session", err)
		return
	}
	if err := h.startSession(w, r, op); err != nil {
		h.serverError(w, "start session", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Token refreshed",
	})
}

// Me returns the current authenticated operator
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.OperatorFrom(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	op, exists, err := h.queryHandler.GetOperator(claims.OperatorID)
	if err != nil {
		h.serverError(w, "look up operator", err)
		return
	}
	if !exists {
		respondJSONError(w, "Operator not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, toOperatorResponse(op))
}

// ChangePassword handles password change requests
func (h *AuthHandlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.OperatorFrom(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	op, exists, err := h.queryHandler.GetOperator(claims.OperatorID)
	if err != nil {
		h.serverError(w, "look up operator", err)
		return
	}
	if !exists {
		respondJSONError(w, "Operator not found", http.StatusNotFound)
		return
	}
	if !auth.CheckPassword(req.CurrentPassword, op.PasswordHash) {
		respondJSONError(w, "Current password is incorrect", http.StatusBadRequest)
		return
	}

	if err := h.operatorService.ChangePassword(r.Context(), claims.OperatorID, req.NewPassword); err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, auth.ErrPasswordTooLong) {
			respondJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.serverError(w, "change password", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

// Helper methods

// startSession issues a token pair, records the login with the hashed refresh token and sets the cookies
func (h *AuthHandlers) startSession(w http.ResponseWriter, r *http.Request, op *query.OperatorReadModel) error {
	sessionID := uuid.New().String()

	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(op.ID, op.Email, op.Role)
	if err != nil {
		return err
	}
	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(op.ID, sessionID)
	if err != nil {
		return err
	}

	err = h.operatorService.RecordLogin(r.Context(), op.ID, operator.Session{
		ID:               sessionID,
		RefreshTokenHash: auth.HashToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		IPAddress:        clientIP(r),
		UserAgent:        r.UserAgent(),
	})
	if err != nil {
		return err
	}

	secure := h.secureCookies || r.TLS != nil
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/api/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sessionID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (h *AuthHandlers) rejectRefresh(w http.ResponseWriter, r *http.Request, message string) {
	h.clearAuthCookies(w, r)
	respondJSONError(w, message, http.StatusUnauthorized)
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter, r *http.Request) {
	secure := h.secureCookies || r.TLS != nil
	for _, c := range []struct{ name, path string }{
		{middleware.AccessTokenCookie, "/"},
		{middleware.RefreshTokenCookie, "/api/auth/refresh"},
		{middleware.SessionCookie, "/"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (h *AuthHandlers) serverError(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op+" failed", zap.Error(err))
	respondJSONError(w, serverError, http.StatusInternalServerError)
}
