package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed storefront.yaml
var defaultStorefrontYAML []byte

// Storefront holds the presentation settings of the terminal storefront
type Storefront struct {
	Categories     []string        `yaml:"categories"`
	Purities       []string        `yaml:"purities"`
	Price          PriceConfig     `yaml:"price"`
	Carousel       CarouselConfig  `yaml:"carousel"`
	FallbackSlides []FallbackSlide `yaml:"fallback_slides"`

	FallbackTestimonials []FallbackTestimonial `yaml:"fallback_testimonials"`
}

type PriceConfig struct {
	Ceiling float64 `yaml:"ceiling"`
}

type CarouselConfig struct {
	Interval       time.Duration `yaml:"interval"`
	SwipeThreshold float64       `yaml:"swipe_threshold"`
}

// FallbackSlide is shown when the slide listing is unavailable
type FallbackSlide struct {
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	ButtonText string `yaml:"button_text"`
	ButtonLink string `yaml:"button_link"`
	ImageURL   string `yaml:"image_url"`
}

// FallbackTestimonial is shown when no testimonials can be fetched
type FallbackTestimonial struct {
	Name     string `yaml:"name"`
	Message  string `yaml:"message"`
	ImageURL string `yaml:"image_url"`
}

// DefaultStorefront returns the embedded settings
func DefaultStorefront() *Storefront {
	cfg := &Storefront{}
	if err := yaml.Unmarshal(defaultStorefrontYAML, cfg); err != nil {
		panic(fmt.Sprintf("embedded storefront.yaml is invalid: %v", err))
	}
	return cfg
}

// LoadStorefront overlays the YAML file at path on the embedded defaults.
// An empty path returns the defaults.
func LoadStorefront(path string) (*Storefront, error) {
	cfg := DefaultStorefront()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storefront config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse storefront config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the view engine cannot run with
func (s *Storefront) Validate() error {
	if s.Carousel.Interval <= 0 {
		return errors.New("carousel.interval must be positive")
	}
	if s.Carousel.SwipeThreshold <= 0 {
		return errors.New("carousel.swipe_threshold must be positive")
	}
	if s.Price.Ceiling <= 0 {
		return errors.New("price.ceiling must be positive")
	}
	if len(s.FallbackSlides) == 0 {
		return errors.New("at least one fallback slide is required")
	}
	if len(s.FallbackTestimonials) == 0 {
		return errors.New("at least one fallback testimonial is required")
	}
	return nil
}
