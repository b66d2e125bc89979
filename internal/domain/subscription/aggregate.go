package subscription

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/example/lastara-storefront/internal/infrastructure/store"
)

const AggregateType = "Subscription"

var (
	ErrPhoneRequired     = errors.New("phone is required")
	ErrInvalidPhone      = errors.New("phone must be a 10-digit mobile number starting with 6-9")
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// Indian mobile numbers: ten digits, leading 6-9
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// ValidatePhone trims surrounding whitespace and checks the mobile number format.
// It returns the trimmed number.
func ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", ErrPhoneRequired
	}
	if !phonePattern.MatchString(phone) {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

// GetSubscriptionID derives the aggregate ID from the phone number, so the event
// stream itself enforces one subscription per phone.
func GetSubscriptionID(phone string) string {
	return "subscription-" + phone
}

type Subscription struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

// Subscribe registers a phone number for the newsletter
func (s *Service) Subscribe(ctx context.Context, phone, source string) (*Subscription, error) {
	phone, err := ValidatePhone(phone)
	if err != nil {
		return nil, err
	}

	subscriptionID := GetSubscriptionID(phone)
	if len(s.eventStore.GetEvents(subscriptionID)) > 0 {
		return nil, ErrAlreadySubscribed
	}

	event := SubscriptionCreated{
		SubscriptionID: subscriptionID,
		Phone:          phone,
		Source:         source,
		CreatedAt:      time.Now(),
	}

	// a concurrent request for the same number may have passed the check above
	_, err = s.eventStore.Create(ctx, subscriptionID, AggregateType, EventSubscriptionCreated, event)
	if errors.Is(err, store.ErrAggregateExists) {
		return nil, ErrAlreadySubscribed
	}
	if err != nil {
		return nil, err
	}

	return &Subscription{
		ID:        subscriptionID,
		Phone:     phone,
		Source:    source,
		CreatedAt: event.CreatedAt,
	}, nil
}
