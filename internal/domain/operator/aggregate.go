package operator

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/example/lastara-storefront/internal/auth"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

const (
	AggregateType = "Operator"
	RoleAdmin     = "admin"
)

var (
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrInvalidEmail       = errors.New("a valid email is required")
	ErrInvalidName        = errors.New("name is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOperatorInactive   = errors.New("operator account is deactivated")
)

// Operator is a back-office account allowed to edit the catalog
type Operator struct {
	ID        string
	Email     string
	Name      string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// Session describes a login to be recorded against an operator
type Session struct {
	ID               string
	RefreshTokenHash string
	ExpiresAt        time.Time
	IPAddress        string
	UserAgent        string
}

// Service handles operator domain operations
type Service struct {
	eventStore store.EventStoreInterface
}

// NewService creates a new operator service
func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// NormalizeEmail lower-cases and trims an email; it returns "" when the address does not parse
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return ""
	}
	return email
}

// Register creates a new operator with the admin role
func (s *Service) Register(ctx context.Context, email, password, name string) (*Operator, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	operatorID := uuid.New().String()
	now := time.Now()

	event := OperatorRegistered{
		OperatorID:   operatorID,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleAdmin,
		CreatedAt:    now,
	}

	if _, err := s.eventStore.Append(ctx, operatorID, AggregateType, EventOperatorRegistered, event); err != nil {
		return nil, err
	}

	return &Operator{
		ID:        operatorID,
		Email:     email,
		Name:      name,
		Role:      RoleAdmin,
		IsActive:  true,
		CreatedAt: now,
	}, nil
}

// RecordLogin records a login and the session it opened
func (s *Service) RecordLogin(ctx context.Context, operatorID string, session Session) error {
	if len(s.eventStore.GetEvents(operatorID)) == 0 {
		return ErrOperatorNotFound
	}

	event := OperatorLoggedIn{
		OperatorID:       operatorID,
		SessionID:        session.ID,
		RefreshTokenHash: session.RefreshTokenHash,
		ExpiresAt:        session.ExpiresAt,
		IPAddress:        session.IPAddress,
		UserAgent:        session.UserAgent,
		LoggedAt:         time.Now(),
	}

	_, err := s.eventStore.Append(ctx, operatorID, AggregateType, EventOperatorLoggedIn, event)
	return err
}

// RecordLogout records a logout; an empty sessionID ends every session of the operator
func (s *Service) RecordLogout(ctx context.Context, operatorID, sessionID string) error {
	event := OperatorLoggedOut{
		OperatorID: operatorID,
		SessionID:  sessionID,
		LoggedAt:   time.Now(),
	}

	_, err := s.eventStore.Append(ctx, operatorID, AggregateType, EventOperatorLoggedOut, event)
	return err
}

// ChangePassword replaces the operator's password hash
func (s *Service) ChangePassword(ctx context.Context, operatorID, newPassword string) error {
	if len(s.eventStore.GetEvents(operatorID)) == 0 {
		return ErrOperatorNotFound
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	event := OperatorPasswordChanged{
		OperatorID:   operatorID,
		PasswordHash: passwordHash,
		ChangedAt:    time.Now(),
	}

	_, err = s.eventStore.Append(ctx, operatorID, AggregateType, EventOperatorPasswordChanged, event)
	return err
}
