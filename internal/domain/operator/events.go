package operator

import "time"

const (
	EventOperatorRegistered      = "OperatorRegistered"
	EventOperatorPasswordChanged = "OperatorPasswordChanged"
	EventOperatorLoggedIn        = "OperatorLoggedIn"
	EventOperatorLoggedOut       = "OperatorLoggedOut"
)

// OperatorRegistered is emitted when a back-office account is created
type OperatorRegistered struct {
	OperatorID   string    `json:"operator_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type OperatorPasswordChanged struct {
	OperatorID   string    `json:"operator_id"`
	PasswordHash string    `json:"password_hash"`
	ChangedAt    time.Time `json:"changed_at"`
}

// OperatorLoggedIn carries the new session; the projector stores it with the hashed refresh token
type OperatorLoggedIn struct {
	OperatorID       string    `json:"operator_id"`
	SessionID        string    `json:"session_id"`
	RefreshTokenHash string    `json:"refresh_token_hash"`
	ExpiresAt        time.Time `json:"expires_at"`
	IPAddress        string    `json:"ip_address"`
	UserAgent        string    `json:"user_agent"`
	LoggedAt         time.Time `json:"logged_at"`
}

// OperatorLoggedOut ends one session, or all of them when SessionID is empty
type OperatorLoggedOut struct {
	OperatorID string    `json:"operator_id"`
	SessionID  string    `json:"session_id,omitempty"`
	LoggedAt   time.Time `json:"logged_at"`
}
