package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/auth"
	"github.com/example/lastara-storefront/internal/domain/operator"
	"github.com/example/lastara-storefront/internal/readmodel"
)

// Cookie names shared with the auth handlers
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	SessionCookie      = "session_id"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken reads the access token from the back-office cookie or a Bearer header
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

type operatorKey struct{}

// WithOperator attaches verified operator claims to ctx
func WithOperator(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, operatorKey{}, claims)
}

// OperatorFrom returns the operator attached by the Gate, if any
func OperatorFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(operatorKey{}).(*auth.Claims)
	return claims, ok
}

// OperatorLookup resolves the operator behind a token.
// query.Handler satisfies it.
type OperatorLookup interface {
	GetOperator(id string) (*readmodel.OperatorReadModel, bool, error)
}

// Gate guards the back office. A token is only honoured while its operator
// exists and is active, so disabling an account takes effect before the
// access token expires.
type Gate struct {
	jwt       *auth.JWTService
	operators OperatorLookup
	logger    *zap.Logger
}

// NewGate builds a Gate. With a nil lookup only the token itself is checked.
func NewGate(jwtService *auth.JWTService, operators OperatorLookup, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{jwt: jwtService, operators: operators, logger: logger.Named("gate")}
}

type rejection struct {
	message string
	status  int
}

var (
	rejectNoToken      = &rejection{"unauthorized", http.StatusUnauthorized}
	rejectInvalidToken = &rejection{"invalid token", http.StatusUnauthorized}
	rejectInactive     = &rejection{"operator is disabled", http.StatusUnauthorized}
	rejectLookupFailed = &rejection{"internal server error", http.StatusInternalServerError}
	rejectForbidden    = &rejection{"forbidden", http.StatusForbidden}
)

func (g *Gate) verify(r *http.Request) (*auth.Claims, *rejection) {
	token := ExtractToken(r)
	if token == "" {
		return nil, rejectNoToken
	}
	claims, err := g.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, rejectInvalidToken
	}
	if g.operators == nil {
		return claims, nil
	}

	op, found, err := g.operators.GetOperator(claims.OperatorID)
	switch {
	case err != nil:
		g.logger.Error("operator lookup failed", zap.String("operator_id", claims.OperatorID), zap.Error(err))
		return nil, rejectLookupFailed
	case !found || !op.IsActive:
		g.logger.Info("rejected token of inactive operator", zap.String("operator_id", claims.OperatorID))
		return nil, rejectInactive
	}
	return claims, nil
}

// Operator admits any signed-in operator
func (g *Gate) Operator(next http.Handler) http.Handler {
	return g.require(next)
}

// Admin admits operators holding the admin role
func (g *Gate) Admin(next http.Handler) http.Handler {
	return g.require(next, operator.RoleAdmin)
}

func (g *Gate) require(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, rej := g.verify(r)
		if rej == nil && !hasRole(claims, roles) {
			rej = rejectForbidden
		}
		if rej != nil {
			respondError(w, rej.message, rej.status)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOperator(r.Context(), claims)))
	})
}

// Identify attaches the operator when the request carries a usable token and
// passes every request through. Logout uses it so stale cookies still get cleared.
func (g *Gate) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, rej := g.verify(r); rej == nil {
			r = r.WithContext(WithOperator(r.Context(), claims))
		}
		next.ServeHTTP(w, r)
	})
}

// hasRole is true when roles is empty or contains the operator's role
func hasRole(claims *auth.Claims, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if claims.Role == role {
			return true
		}
	}
	return false
}
