package slide

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/example/lastara-storefront/internal/domain/aggregate"
	"github.com/example/lastara-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

const AggregateType = "Slide"

var (
	ErrSlideNotFound = errors.New("slide not found")
	ErrInvalidImage  = errors.New("slide image url is required")
)

type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id,omitempty"`
}

// NewSlide is the operator's input for a hero slide
type NewSlide struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ButtonText string `json:"button_text"`
	ButtonLink string `json:"button_link"`
	Image      Image  `json:"image"`
}

type Slide struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	ButtonText string    `json:"button_text,omitempty"`
	ButtonLink string    `json:"button_link,omitempty"`
	Image      Image     `json:"image"`
	IsDeleted  bool      `json:"-"`
	Version    int       `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Slide) GetID() string   { return s.ID }
func (s *Slide) GetVersion() int { return s.Version }

func (s *Slide) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventSlideCreated:
		var e SlideCreated
		if err := json.Unmarshal(event.Data, &e); err != nil {
			return err
		}
		s.ID = e.SlideID
		s.Title, s.Subtitle = e.Title, e.Subtitle
		s.ButtonText, s.ButtonLink = e.ButtonText, e.ButtonLink
		s.Image = e.Image
		s.CreatedAt = e.CreatedAt
	case EventSlideDeleted:
		s.IsDeleted = true
	}
	s.Version = event.Version
	return nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) Create(ctx context.Context, in NewSlide) (*Slide, error) {
	if strings.TrimSpace(in.Image.URL) == "" {
		return nil, ErrInvalidImage
	}

	slideID := uuid.New().String()
	now := time.Now()

	event := SlideCreated{
		SlideID:    slideID,
		Title:      strings.TrimSpace(in.Title),
		Subtitle:   strings.TrimSpace(in.Subtitle),
		ButtonText: in.ButtonText,
		ButtonLink: in.ButtonLink,
		Image:      in.Image,
		CreatedAt:  now,
	}

	if _, err := s.eventStore.Append(ctx, slideID, AggregateType, EventSlideCreated, event); err != nil {
		return nil, err
	}

	return &Slide{
		ID:         slideID,
		Title:      event.Title,
		Subtitle:   event.Subtitle,
		ButtonText: event.ButtonText,
		ButtonLink: event.ButtonLink,
		Image:      event.Image,
		Version:    1,
		CreatedAt:  now,
	}, nil
}

func (s *Service) Delete(ctx context.Context, slideID string) error {
	current, found, err := aggregate.Load(s.eventStore, slideID, func() *Slide { return &Slide{} })
	if err != nil {
		return err
	}
	if !found || current.IsDeleted {
		return ErrSlideNotFound
	}

	event := SlideDeleted{
		SlideID:       slideID,
		ImagePublicID: current.Image.PublicID,
		DeletedAt:     time.Now(),
	}

	_, err = s.eventStore.Append(ctx, slideID, AggregateType, EventSlideDeleted, event)
	return err
}
