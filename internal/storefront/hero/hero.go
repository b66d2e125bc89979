// Package hero resolves the slide sequence shown by the storefront carousel.
package hero

import (
	"strconv"

	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/example/lastara-storefront/internal/storefront/fetch"
)

type Slide struct {
	ID         string
	Title      string
	Subtitle   string
	ButtonText string
	ButtonLink string
	ImageURL   string
}

// HasCTA reports whether the slide carries a call-to-action
func (s Slide) HasCTA() bool {
	return s.ButtonText != "" && s.ButtonLink != ""
}

func FromReadModels(slides []readmodel.SlideReadModel) []Slide {
	out := make([]Slide, len(slides))
	for i, s := range slides {
		out[i] = Slide{
			ID:         s.ID,
			Title:      s.Title,
			Subtitle:   s.Subtitle,
			ButtonText: s.ButtonText,
			ButtonLink: s.ButtonLink,
			ImageURL:   s.Image.URL,
		}
	}
	return out
}

// Fallback converts the configured default slides
func Fallback(slides []config.FallbackSlide) []Slide {
	out := make([]Slide, len(slides))
	for i, s := range slides {
		out[i] = Slide{
			ID:         "fallback-" + strconv.Itoa(i+1),
			Title:      s.Title,
			Subtitle:   s.Subtitle,
			ButtonText: s.ButtonText,
			ButtonLink: s.ButtonLink,
			ImageURL:   s.ImageURL,
		}
	}
	return out
}

// Deck is the slide sequence on screen: the latest fetched slides, or the
// fallback when the fetch failed or came back empty
type Deck = fetch.List[Slide]

func NewDeck(fallback []Slide) *Deck {
	return fetch.NewList(fallback)
}
