// Package catalog filters the product collection for display.
package catalog

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/example/lastara-storefront/internal/readmodel"
)

// All is the selection that disables the category or purity filter
const All = "all"

var ErrInvalidPrice = errors.New("price must be a non-negative number")

type Image struct {
	URL      string
	PublicID string
}

// Item is a product as the storefront sees it
type Item struct {
	ID           string
	Title        string
	Description  string
	Category     string
	Purity       string
	Weight       *float64
	PricePerGram *float64
	Images       []Image
	CreatedAt    time.Time
}

// TotalPrice is PricePerGram × Weight; ok is false unless both are present and non-negative
func (it Item) TotalPrice() (total float64, ok bool) {
	if it.PricePerGram == nil || it.Weight == nil || *it.PricePerGram < 0 || *it.Weight < 0 {
		return 0, false
	}
	return *it.PricePerGram * *it.Weight, true
}

// FromProducts converts the listing returned by the catalog store, keeping its order
func FromProducts(products []readmodel.ProductReadModel) []Item {
	items := make([]Item, len(products))
	for i, p := range products {
		images := make([]Image, len(p.Images))
		for j, img := range p.Images {
			images[j] = Image{URL: img.URL, PublicID: img.PublicID}
		}
		items[i] = Item{
			ID:           p.ID,
			Title:        p.Title,
			Description:  p.Description,
			Category:     p.Category,
			Purity:       p.Purity,
			Weight:       p.Weight,
			PricePerGram: p.PricePerGram,
			Images:       images,
			CreatedAt:    p.CreatedAt,
		}
	}
	return items
}

// PriceRange is an inclusive [Min, Max] bound on TotalPrice
type PriceRange struct {
	Min float64
	Max float64
}

// Unbounded reports whether the range admits every non-negative price
func (r PriceRange) Unbounded() bool {
	return r.Min <= 0 && math.IsInf(r.Max, 1)
}

func (r PriceRange) contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Criteria is the combined filter selection
type Criteria struct {
	Search   string
	Category string
	Purity   string
	Price    PriceRange
}

// DefaultCriteria admits every item
func DefaultCriteria() Criteria {
	return Criteria{
		Category: All,
		Purity:   All,
		Price:    PriceRange{Min: 0, Max: math.Inf(1)},
	}
}

// IsDefault reports whether no dimension is narrowing the list
func (c Criteria) IsDefault() bool {
	return c.Search == "" && c.Category == All && c.Purity == All && c.Price.Unbounded()
}

// Apply returns the items matching every dimension of c, in input order.
// items is never modified.
func Apply(items []Item, c Criteria) []Item {
	search := strings.ToLower(c.Search)
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if matches(it, c, search) {
			out = append(out, it)
		}
	}
	return out
}

func matches(it Item, c Criteria, search string) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(it.Title), search) &&
		!strings.Contains(strings.ToLower(it.Description), search) {
		return false
	}
	if c.Category != All && it.Category != c.Category {
		return false
	}
	if c.Purity != All && it.Purity != c.Purity {
		return false
	}
	// An item whose price cannot be computed is never excluded by price
	if total, ok := it.TotalPrice(); ok && !c.Price.contains(total) {
		return false
	}
	return true
}

// ParsePriceRange coerces the text of the min and max price inputs.
// A blank min is 0 and a blank max is unbounded; reversed bounds are swapped.
func ParsePriceRange(minText, maxText string) (PriceRange, error) {
	lo, err := parseBound(minText, 0)
	if err != nil {
		return PriceRange{}, err
	}
	hi, err := parseBound(maxText, math.Inf(1))
	if err != nil {
		return PriceRange{}, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return PriceRange{Min: lo, Max: hi}, nil
}

func parseBound(text string, blank float64) (float64, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return blank, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || v < 0 || math.IsNaN(v) {
		return 0, ErrInvalidPrice
	}
	return v, nil
}

var inr = message.NewPrinter(language.MustParse("en-IN"))

// FormatINR renders a rupee amount rounded to whole rupees with Indian digit
// grouping, e.g. ₹1,23,456
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	return sign + "₹" + inr.Sprintf("%.0f", math.Round(amount))
}
