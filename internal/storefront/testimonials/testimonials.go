// Package testimonials resolves the customer quotes shown below the catalog.
package testimonials

import (
	"strconv"

	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/example/lastara-storefront/internal/storefront/fetch"
)

type Testimonial struct {
	ID        string
	Name      string
	Message   string
	AvatarURL string
}

func FromReadModels(items []readmodel.TestimonialReadModel) []Testimonial {
	out := make([]Testimonial, len(items))
	for i, t := range items {
		out[i] = Testimonial{
			ID:        t.ID,
			Name:      t.Name,
			Message:   t.Message,
			AvatarURL: t.Image.URL,
		}
	}
	return out
}

// Fallback converts the configured default testimonials
func Fallback(items []config.FallbackTestimonial) []Testimonial {
	out := make([]Testimonial, len(items))
	for i, t := range items {
		out[i] = Testimonial{
			ID:        "fallback-" + strconv.Itoa(i+1),
			Name:      t.Name,
			Message:   t.Message,
			AvatarURL: t.ImageURL,
		}
	}
	return out
}

// Board is the testimonial list on screen
type Board = fetch.List[Testimonial]

func NewBoard(fallback []Testimonial) *Board {
	return fetch.NewList(fallback)
}

// Window returns up to n testimonials starting at offset, wrapping around the list
func Window(items []Testimonial, offset, n int) []Testimonial {
	if len(items) == 0 || n <= 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	offset %= len(items)
	if offset < 0 {
		offset += len(items)
	}
	out := make([]Testimonial, n)
	for i := range out {
		out[i] = items[(offset+i)%len(items)]
	}
	return out
}
