package slide

import "time"

const (
	EventSlideCreated = "SlideCreated"
	EventSlideDeleted = "SlideDeleted"
)

type SlideCreated struct {
	SlideID    string    `json:"slide_id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	ButtonText string    `json:"button_text,omitempty"`
	ButtonLink string    `json:"button_link,omitempty"`
	Image      Image     `json:"image"`
	CreatedAt  time.Time `json:"created_at"`
}

type SlideDeleted struct {
	SlideID       string    `json:"slide_id"`
	ImagePublicID string    `json:"image_public_id,omitempty"`
	DeletedAt     time.Time `json:"deleted_at"`
}
