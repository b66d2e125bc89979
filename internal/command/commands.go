package command

import (
	"github.com/example/lastara-storefront/internal/domain/product"
	"github.com/example/lastara-storefront/internal/domain/slide"
)

// Product Commands
type CreateProduct struct {
	product.NewProduct
}

type UpdateProduct struct {
	ProductID string `json:"product_id"`
	product.NewProduct
}

type DeleteProduct struct {
	ProductID string `json:"product_id"`
}

// Slide Commands
type CreateSlide struct {
	slide.NewSlide
}

type DeleteSlide struct {
	SlideID string `json:"slide_id"`
}

// Newsletter Commands
type Subscribe struct {
	Phone          string `json:"phone"`
	RecaptchaToken string `json:"recaptcha_token"`
	Source         string `json:"source"`
	RemoteIP       string `json:"-"`
}

// Operator Commands
type SeedOperator struct {
	Email    string
	Password string
	Name     string
}
