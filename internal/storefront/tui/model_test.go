package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/example/lastara-storefront/internal/storefront/carousel"
	"github.com/example/lastara-storefront/internal/storefront/client"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu           sync.Mutex
	products     []readmodel.ProductReadModel
	productsErr  error
	slides       []readmodel.SlideReadModel
	slidesErr    error
	testimonials []readmodel.TestimonialReadModel
	quotesErr    error
	subscribeErr error
	subscribed   []string
}

func (f *fakeSource) ListProducts(context.Context) ([]readmodel.ProductReadModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products, f.productsErr
}

func (f *fakeSource) ListSlides(context.Context) ([]readmodel.SlideReadModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slides, f.slidesErr
}

func (f *fakeSource) ListTestimonials(context.Context) ([]readmodel.TestimonialReadModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.testimonials == nil && f.quotesErr == nil {
		return nil, &client.StatusError{Code: 404}
	}
	return f.testimonials, f.quotesErr
}

func (f *fakeSource) setSlides(slides ...readmodel.SlideReadModel) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slides = slides
}

func (f *fakeSource) Subscribe(_ context.Context, phone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed = append(f.subscribed, phone)
	return f.subscribeErr
}

func ptr(v float64) *float64 { return &v }

func jewellery() []readmodel.ProductReadModel {
	return []readmodel.ProductReadModel{
		{ID: "p1", Title: "Temple Necklace", Category: "Necklaces", Purity: "22K", Weight: ptr(10), PricePerGram: ptr(6000)},
		{ID: "p2", Title: "Solitaire Ring", Category: "Rings", Purity: "18K", Weight: ptr(3), PricePerGram: ptr(7000)},
		{ID: "p3", Title: "Jhumka Earrings", Category: "Earrings", Purity: "22K"},
		{ID: "p4", Title: "Bridal Set", Category: "Necklaces", Purity: "22K", Weight: ptr(30), PricePerGram: ptr(6000)},
	}
}

func newTestModel(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := NewModel(Options{
		Source:   src,
		Carousel: []carousel.Option{carousel.WithInterval(time.Hour)},
	})
	t.Cleanup(m.Close)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func loaded(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := newTestModel(t, src)
	m, _ = update(t, m, m.loadProducts()())
	m, _ = update(t, m, m.loadSlides()())
	m, _ = update(t, m, m.loadTestimonials()())
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, keyMsg(k))
	}
	return m
}

// ============================================
// Catalog Tests
// ============================================

func TestModel_LoadingThenListing(t *testing.T) {
	src := &fakeSource{products: jewellery()}
	m := newTestModel(t, src)

	cmd := m.loadProducts()
	assert.Contains(t, m.View(), "Loading products…")

	m, _ = update(t, m, cmd())
	view := m.View()

	assert.Contains(t, view, "Showing 4 of 4 products")
	assert.Contains(t, view, "Temple Necklace")
	assert.Contains(t, view, "₹60,000")
	assert.Contains(t, view, "₹1,80,000")
	assert.Contains(t, view, "Price on request")
}

func TestModel_FetchFailureShowsEmptyCatalog(t *testing.T) {
	src := &fakeSource{productsErr: errors.New("connection refused")}

	m := loaded(t, src)

	assert.Contains(t, m.View(), "No products found")
}

func TestModel_StaleLoadDiscarded(t *testing.T) {
	src := &fakeSource{products: jewellery()[:1]}
	m := newTestModel(t, src)

	first := m.loadProducts()
	second := m.loadProducts()
	staleMsg := first()
	src.mu.Lock()
	src.products = jewellery()
	src.mu.Unlock()
	freshMsg := second()

	m, _ = update(t, m, freshMsg)
	m, _ = update(t, m, staleMsg)

	assert.Contains(t, m.View(), "Showing 4 of 4 products")
}

func TestModel_Search(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "/", "solitaire")

	assert.Equal(t, focusSearch, m.focus)
	assert.Contains(t, m.View(), "Showing 1 of 4 products")
	assert.Contains(t, m.View(), "Solitaire Ring")
	assert.NotContains(t, m.View(), "Bridal Set")
}

func TestModel_CategoryAndPurityCycle(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "c")
	assert.Equal(t, "Necklaces", m.view.Snapshot().Criteria.Category)
	assert.Contains(t, m.View(), "Showing 2 of 4 products")

	m = press(t, m, "c", "c", "c", "c", "c")
	assert.Equal(t, "all", m.view.Snapshot().Criteria.Category)

	m = press(t, m, "p")
	assert.Equal(t, "22K", m.view.Snapshot().Criteria.Purity)
	assert.Contains(t, m.View(), "Showing 3 of 4 products")
}

func TestModel_NoMatches(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "/", "platinum")

	assert.Contains(t, m.View(), "No products found")
}

func TestModel_PriceRange(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "tab", "tab", "30000")
	assert.Equal(t, focusMinPrice, m.focus)
	assert.Contains(t, m.View(), "Showing 3 of 4 products")

	m = press(t, m, "tab", "50000")
	assert.Contains(t, m.View(), "Showing 1 of 4 products")
	assert.Contains(t, m.View(), "Jhumka Earrings")
}

func TestModel_PriceCeilingMeansNoLimit(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "tab", "tab", "tab", "99999")
	assert.Contains(t, m.View(), "Showing 3 of 4 products")

	m = press(t, m, "esc", "tab", "tab", "tab", "1")
	assert.True(t, m.view.Snapshot().Criteria.Price.Unbounded())
	assert.Contains(t, m.View(), "Showing 4 of 4 products")
}

func TestModel_InvalidPriceKeepsPreviousFilter(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "tab", "tab", "abc")

	assert.Contains(t, m.View(), "Prices must be non-negative numbers")
	assert.Contains(t, m.View(), "Showing 4 of 4 products")
}

func TestModel_ClearFilters(t *testing.T) {
	m := loaded(t, &fakeSource{products: jewellery()})

	m = press(t, m, "c", "p", "/", "temple", "esc", "x")

	assert.True(t, m.view.Snapshot().Criteria.IsDefault())
	assert.Empty(t, m.search.Value())
	assert.Contains(t, m.View(), "Showing 4 of 4 products")
}

// ============================================
// Hero Carousel Tests
// ============================================

func TestModel_SlidesReplaceFallback(t *testing.T) {
	src := &fakeSource{slides: []readmodel.SlideReadModel{{ID: "s1", Title: "Diwali Edit"}, {ID: "s2", Title: "Bridal Gold"}}}
	m := newTestModel(t, src)
	assert.Contains(t, m.View(), "Elegant Gold Collection")

	m, _ = update(t, m, m.loadSlides()())
	assert.Contains(t, m.View(), "Diwali Edit")
	assert.Equal(t, 2, m.carousel.Snapshot().Length)

	m = press(t, m, "right")
	assert.Contains(t, m.View(), "Bridal Gold")

	m = press(t, m, "right")
	assert.Contains(t, m.View(), "Diwali Edit")
}

func TestModel_FailedOrEmptySlidesUseFallback(t *testing.T) {
	for name, src := range map[string]*fakeSource{
		"failed": {slidesErr: errors.New("timeout")},
		"empty":  {slides: []readmodel.SlideReadModel{}},
	} {
		t.Run(name, func(t *testing.T) {
			m := loaded(t, src)

			assert.Equal(t, 3, m.carousel.Snapshot().Length)
			assert.Contains(t, m.View(), "Elegant Gold Collection")
		})
	}
}

func TestModel_StaleSlideLoadDiscarded(t *testing.T) {
	src := &fakeSource{}
	src.setSlides(readmodel.SlideReadModel{ID: "old-1", Title: "Old One"}, readmodel.SlideReadModel{ID: "old-2", Title: "Old Two"})
	m := newTestModel(t, src)

	older := m.loadSlides()
	olderMsg := older()
	src.setSlides(
		readmodel.SlideReadModel{ID: "new-1", Title: "New One"},
		readmodel.SlideReadModel{ID: "new-2", Title: "New Two"},
		readmodel.SlideReadModel{ID: "new-3", Title: "New Three"},
	)
	newerMsg := m.loadSlides()()

	m, _ = update(t, m, newerMsg)
	m, _ = update(t, m, olderMsg)

	assert.Equal(t, "new-1", m.deck.Items()[0].ID)
	assert.Equal(t, 3, m.carousel.Snapshot().Length)
	assert.Contains(t, m.View(), "New One")
}

func TestModel_SlideLoadAfterCloseDiscarded(t *testing.T) {
	src := &fakeSource{}
	src.setSlides(readmodel.SlideReadModel{ID: "new-1", Title: "New One"})
	m := newTestModel(t, src)

	inFlight := m.loadSlides()
	m.Close()
	m, _ = update(t, m, inFlight())
	m, _ = update(t, m, m.loadSlides()())

	assert.Equal(t, "fallback-1", m.deck.Items()[0].ID)
	assert.Contains(t, m.View(), "Elegant Gold Collection")
}

func TestModel_CarouselKeys(t *testing.T) {
	m := loaded(t, &fakeSource{slidesErr: errors.New("offline")})

	m = press(t, m, "3")
	assert.Equal(t, 2, m.carousel.Snapshot().Index)
	assert.Contains(t, m.View(), "Luxury Craftsmanship")

	m = press(t, m, "left")
	assert.Equal(t, 1, m.carousel.Snapshot().Index)

	m = press(t, m, "9")
	assert.Equal(t, 1, m.carousel.Snapshot().Index)

	m = press(t, m, "space")
	assert.Equal(t, carousel.Paused, m.carousel.Snapshot().State)
	assert.Contains(t, m.View(), "paused")

	m = press(t, m, "space")
	assert.Equal(t, carousel.Playing, m.carousel.Snapshot().State)
}

func TestModel_TerminalFocusPauses(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = update(t, m, tea.BlurMsg{})
	assert.Equal(t, carousel.Paused, m.carousel.Snapshot().State)

	m, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, carousel.Playing, m.carousel.Snapshot().State)
}

func TestModel_RegainingFocusKeepsHoverPause(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionMotion})
	m, _ = update(t, m, tea.BlurMsg{})
	m, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, carousel.Paused, m.carousel.Snapshot().State, "pointer still over the hero")

	m, _ = update(t, m, tea.BlurMsg{})
	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 20, Action: tea.MouseActionMotion})
	assert.Equal(t, carousel.Paused, m.carousel.Snapshot().State, "terminal still unfocused")

	m, _ = update(t, m, tea.FocusMsg{})
	assert.Equal(t, carousel.Playing, m.carousel.Snapshot().State)
}

func TestModel_MouseDragSwipes(t *testing.T) {
	m := newTestModel(t, &fakeSource{})
	drag := func(m Model, fromX, toX int) Model {
		m, _ = update(t, m, tea.MouseMsg{X: fromX, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		m, _ = update(t, m, tea.MouseMsg{X: toX, Y: 3, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
		return m
	}

	m = drag(m, 40, 37)
	assert.Equal(t, 0, m.carousel.Snapshot().Index, "24px drag is below the threshold")

	m = drag(m, 40, 30)
	assert.Equal(t, 1, m.carousel.Snapshot().Index)

	m = drag(m, 30, 40)
	assert.Equal(t, 0, m.carousel.Snapshot().Index)
}

func TestModel_HoverPauses(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 3, Action: tea.MouseActionMotion})
	assert.Equal(t, carousel.Paused, m.carousel.Snapshot().State)

	m, _ = update(t, m, tea.MouseMsg{X: 10, Y: 20, Action: tea.MouseActionMotion})
	assert.Equal(t, carousel.Playing, m.carousel.Snapshot().State)
}

// ============================================
// Testimonial Tests
// ============================================

func TestModel_TestimonialsFallBackWithoutRoute(t *testing.T) {
	m := loaded(t, &fakeSource{})
	view := m.View()

	assert.Contains(t, view, "What Our Customers Say")
	assert.Contains(t, view, "Priya Sharma")
	assert.Contains(t, view, "Rajesh Kumar")
	assert.NotContains(t, view, "Anita Desai")
}

func TestModel_FetchedTestimonials(t *testing.T) {
	m := loaded(t, &fakeSource{testimonials: []readmodel.TestimonialReadModel{
		{ID: "t1", Name: "Kavya Rao", Message: "Lovely temple necklace"},
	}})

	assert.Contains(t, m.View(), "Kavya Rao")
	assert.NotContains(t, m.View(), "Priya Sharma")
}

func TestModel_TestimonialsRotate(t *testing.T) {
	m := loaded(t, &fakeSource{quotesErr: errors.New("offline")})

	m = press(t, m, "t", "t")
	view := m.View()

	assert.Contains(t, view, "Anita Desai")
	assert.Contains(t, view, "Vikram Singh")
	assert.NotContains(t, view, "Priya Sharma")
}

// ============================================
// Newsletter Tests
// ============================================

func TestModel_NewsletterInlineValidation(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src)

	m = press(t, m, "n", "enter")
	assert.Contains(t, m.View(), client.MsgPhoneRequired)

	m = press(t, m, "5551234567", "enter")
	assert.Contains(t, m.View(), client.MsgInvalidPhone)
	assert.Empty(t, src.subscribed)
}

func TestModel_NewsletterSubmit(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(t, src)

	m = press(t, m, "n", "9876543210")
	m, cmd := update(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	m, _ = update(t, m, cmd())

	assert.False(t, m.submitting)
	assert.Equal(t, []string{"9876543210"}, src.subscribed)
	assert.Contains(t, m.View(), client.MsgSubscribed)
	assert.Empty(t, m.phone.Value())
}

func TestModel_NewsletterDuplicateAndFailure(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{client.ErrAlreadySubscribed, client.MsgAlreadySubscribed},
		{&client.StatusError{Code: 500}, client.MsgGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := newTestModel(t, &fakeSource{subscribeErr: tt.err})

			m = press(t, m, "n", "9876543210")
			m, cmd := update(t, m, keyMsg("enter"))
			require.NotNil(t, cmd)
			m, _ = update(t, m, cmd())

			assert.Contains(t, m.View(), tt.want)
			assert.Equal(t, "9876543210", m.phone.Value())
		})
	}
}

// ============================================
// Lifecycle Tests
// ============================================

func TestModel_QuitClosesEngines(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m, cmd := update(t, m, keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.carousel.Next()
	assert.Equal(t, 0, m.carousel.Snapshot().Index)
	assert.Nil(t, waitForChange(m.sess)())
}

func TestModel_ChangesAreSignalled(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m.carousel.Next()

	assert.Equal(t, changedMsg{}, waitForChange(m.sess)())
}

func TestModel_TypingQDoesNotQuitInInputs(t *testing.T) {
	m := newTestModel(t, &fakeSource{})

	m = press(t, m, "/", "q")

	assert.Equal(t, focusSearch, m.focus)
	assert.Equal(t, "q", m.search.Value())

	m.carousel.Next()
	assert.Equal(t, 1, m.carousel.Snapshot().Index, "carousel still running")
}
