// Package tui is the terminal storefront: hero carousel, filterable product
// grid and newsletter form, rendered with bubbletea.
package tui

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/readmodel"
	"github.com/example/lastara-storefront/internal/storefront/carousel"
	"github.com/example/lastara-storefront/internal/storefront/catalog"
	"github.com/example/lastara-storefront/internal/storefront/client"
	"github.com/example/lastara-storefront/internal/storefront/fetch"
	"github.com/example/lastara-storefront/internal/storefront/hero"
	"github.com/example/lastara-storefront/internal/storefront/testimonials"
)

const (
	requestTimeout = 10 * time.Second

	// terminal cells are mapped to pixels so swipe thresholds keep their meaning
	cellWidthPx  = 8
	cellHeightPx = 16
)

// Source is the catalog store as seen by the storefront
type Source interface {
	ListProducts(ctx context.Context) ([]readmodel.ProductReadModel, error)
	ListSlides(ctx context.Context) ([]readmodel.SlideReadModel, error)
	ListTestimonials(ctx context.Context) ([]readmodel.TestimonialReadModel, error)
	Subscribe(ctx context.Context, phone, token string) error
}

type Options struct {
	Source         Source
	Storefront     *config.Storefront
	RecaptchaToken string
	Logger         *zap.Logger
	// Carousel options are applied after the ones derived from Storefront
	Carousel []carousel.Option
}

type focus int

const (
	focusBrowse focus = iota
	focusSearch
	focusMinPrice
	focusMaxPrice
	focusPhone
)

func (f focus) next() focus {
	if f == focusPhone {
		return focusBrowse
	}
	return f + 1
}

type status struct {
	text string
	ok   bool
}

// session is shared by every copy of the model. Carousel ticks arrive on
// timer goroutines and only signal changed; the model re-reads state on render.
type session struct {
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (s *session) signal() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

type (
	changedMsg        struct{}
	productsLoadedMsg struct {
		token  uint64
		result fetch.Result[[]catalog.Item]
	}
	slidesLoadedMsg struct {
		token  uint64
		result fetch.Result[[]hero.Slide]
	}
	testimonialsLoadedMsg struct {
		token  uint64
		result fetch.Result[[]testimonials.Testimonial]
	}
	subscribedMsg struct{ err error }
)

type Model struct {
	src    Source
	cfg    *config.Storefront
	token  string
	logger *zap.Logger
	styles Styles

	carousel *carousel.Carousel
	view     *catalog.View
	deck     *hero.Deck
	board    *testimonials.Board
	sess     *session

	focus    focus
	search   textinput.Model
	minPrice textinput.Model
	maxPrice textinput.Model
	phone    textinput.Model

	priceErr   string
	status     status
	submitting bool
	offset     int
	quote      int
	hovering   bool
	blurred    bool
	width      int
	height     int
}

func NewModel(opts Options) Model {
	cfg := opts.Storefront
	if cfg == nil {
		cfg = config.DefaultStorefront()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sess := &session{changed: make(chan struct{}, 1), done: make(chan struct{})}
	fallback := hero.Fallback(cfg.FallbackSlides)

	carouselOpts := append([]carousel.Option{
		carousel.WithInterval(cfg.Carousel.Interval),
		carousel.WithSwipeThreshold(cfg.Carousel.SwipeThreshold),
		carousel.WithOnChange(func(carousel.Snapshot) { sess.signal() }),
	}, opts.Carousel...)

	m := Model{
		src:      opts.Source,
		cfg:      cfg,
		token:    opts.RecaptchaToken,
		logger:   logger.Named("tui"),
		styles:   DefaultStyles(),
		carousel: carousel.New(len(fallback), carouselOpts...),
		view:     catalog.NewView(func(catalog.Snapshot) { sess.signal() }),
		deck:     hero.NewDeck(fallback),
		board:    testimonials.NewBoard(testimonials.Fallback(cfg.FallbackTestimonials)),
		sess:     sess,
		search:   newInput("Search jewellery", 64, 30),
		minPrice: newInput("min ₹", 9, 10),
		maxPrice: newInput("max ₹", 9, 10),
		phone:    newInput("WhatsApp number", 10, 16),
	}
	return m
}

func newInput(placeholder string, limit, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = width
	in.Prompt = ""
	return in
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProducts(), m.loadSlides(), m.loadTestimonials(), waitForChange(m.sess))
}

// Close stops the carousel timer and discards every load still in flight.
// Safe to call more than once.
func (m Model) Close() {
	m.sess.once.Do(func() {
		m.carousel.Close()
		m.view.Close()
		m.deck.Close()
		m.board.Close()
		close(m.sess.done)
	})
}

func waitForChange(s *session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.changed:
			return changedMsg{}
		case <-s.done:
			return nil
		}
	}
}

// loadProducts starts a new load generation; a response for an older generation is dropped
func (m Model) loadProducts() tea.Cmd {
	token := m.view.BeginLoad()
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		products, err := src.ListProducts(ctx)
		return productsLoadedMsg{
			token:  token,
			result: fetch.Map(fetch.From(products, err), catalog.FromProducts),
		}
	}
}

func (m Model) loadSlides() tea.Cmd {
	token := m.deck.BeginLoad()
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		slides, err := src.ListSlides(ctx)
		return slidesLoadedMsg{
			token:  token,
			result: fetch.Map(fetch.From(slides, err), hero.FromReadModels),
		}
	}
}

func (m Model) loadTestimonials() tea.Cmd {
	token := m.board.BeginLoad()
	src := m.src
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := src.ListTestimonials(ctx)
		return testimonialsLoadedMsg{
			token:  token,
			result: fetch.Map(fetch.From(items, err), testimonials.FromReadModels),
		}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case changedMsg:
		return m, waitForChange(m.sess)

	case productsLoadedMsg:
		if err := msg.result.Err(); err != nil {
			m.logger.Warn("product listing unavailable", zap.Error(err))
		}
		if m.view.Complete(msg.token, msg.result) {
			m.offset = 0
		}
		return m, nil

	case slidesLoadedMsg:
		if !m.deck.Complete(msg.token, msg.result) {
			return m, nil
		}
		if err := fetch.NonEmpty(msg.result).Err(); err != nil {
			m.logger.Info("showing fallback slides", zap.Error(err))
		}
		m.carousel.SetLength(m.deck.Len())
		return m, nil

	case testimonialsLoadedMsg:
		if !m.board.Complete(msg.token, msg.result) {
			return m, nil
		}
		if err := fetch.NonEmpty(msg.result).Err(); err != nil {
			m.logger.Debug("showing fallback testimonials", zap.Error(err))
		}
		m.quote = 0
		return m, nil

	case subscribedMsg:
		m.submitting = false
		m.status = status{text: client.UserMessage(msg.err), ok: msg.err == nil}
		if msg.err == nil {
			m.phone.Reset()
		} else {
			m.logger.Warn("subscribe failed", zap.Error(msg.err))
		}
		return m, nil

	case tea.FocusMsg:
		m.blurred = false
		m.syncPause()
		return m, nil

	case tea.BlurMsg:
		m.blurred = true
		m.syncPause()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.focus != focusBrowse {
		return m.handleInputKey(msg)
	}

	switch k := msg.String(); k {
	case "q":
		return m.quit()
	case "right", "l":
		m.carousel.Next()
	case "left", "h":
		m.carousel.Previous()
	case " ", "space":
		m.carousel.TogglePaused()
	case "c":
		options := append([]string{catalog.All}, m.cfg.Categories...)
		m.view.Update(func(c *catalog.Criteria) { c.Category = cycle(options, c.Category) })
		m.offset = 0
	case "p":
		options := append([]string{catalog.All}, m.cfg.Purities...)
		m.view.Update(func(c *catalog.Criteria) { c.Purity = cycle(options, c.Purity) })
		m.offset = 0
	case "x":
		m.clearFilters()
	case "r":
		return m, tea.Batch(m.loadProducts(), m.loadSlides(), m.loadTestimonials())
	case "t":
		m.quote++
	case "down", "j":
		if m.offset < len(m.view.Snapshot().Items)-1 {
			m.offset++
		}
	case "up", "k":
		if m.offset > 0 {
			m.offset--
		}
	case "/":
		cmd := m.setFocus(focusSearch)
		return m, cmd
	case "n":
		cmd := m.setFocus(focusPhone)
		return m, cmd
	case "tab":
		cmd := m.setFocus(m.focus.next())
		return m, cmd
	default:
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= 9 {
			m.carousel.GoTo(n - 1)
		}
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		cmd := m.setFocus(focusBrowse)
		return m, cmd
	case "tab":
		cmd := m.setFocus(m.focus.next())
		return m, cmd
	case "enter":
		if m.focus == focusPhone {
			return m.submit()
		}
		cmd := m.setFocus(focusBrowse)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if q := m.search.Value(); q != before {
			m.view.Update(func(c *catalog.Criteria) { c.Search = q })
			m.offset = 0
		}
	case focusMinPrice:
		m.minPrice, cmd = m.minPrice.Update(msg)
		m.applyPrice()
	case focusMaxPrice:
		m.maxPrice, cmd = m.maxPrice.Update(msg)
		m.applyPrice()
	case focusPhone:
		m.phone, cmd = m.phone.Update(msg)
	}
	return m, cmd
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	inputs := map[focus]*textinput.Model{
		focusSearch:   &m.search,
		focusMinPrice: &m.minPrice,
		focusMaxPrice: &m.maxPrice,
		focusPhone:    &m.phone,
	}
	var cmd tea.Cmd
	for which, in := range inputs {
		if which == f {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
	}
	return cmd
}

// applyPrice re-reads both price inputs. A max at or above the configured ceiling
// means no upper limit.
func (m *Model) applyPrice() {
	r, err := catalog.ParsePriceRange(m.minPrice.Value(), m.maxPrice.Value())
	if err != nil {
		m.priceErr = "Prices must be non-negative numbers"
		return
	}
	m.priceErr = ""
	if ceiling := m.cfg.Price.Ceiling; ceiling > 0 && r.Max >= ceiling {
		r.Max = math.Inf(1)
	}
	m.view.Update(func(c *catalog.Criteria) { c.Price = r })
	m.offset = 0
}

func (m *Model) clearFilters() {
	m.view.ClearFilters()
	m.search.Reset()
	m.minPrice.Reset()
	m.maxPrice.Reset()
	m.priceErr = ""
	m.offset = 0
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	phone, err := client.ValidatePhone(m.phone.Value())
	if err != nil {
		m.status = status{text: client.UserMessage(err)}
		return m, nil
	}

	m.submitting = true
	m.status = status{}
	src, token := m.src, m.token
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return subscribedMsg{err: src.Subscribe(ctx, phone, token)}
	}
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	inHero := msg.Y >= heroTop && msg.Y < heroTop+heroHeight
	x, y := float64(msg.X*cellWidthPx), float64(msg.Y*cellHeightPx)

	switch {
	case msg.Button == tea.MouseButtonWheelRight && inHero:
		m.carousel.Next()
	case msg.Button == tea.MouseButtonWheelLeft && inHero:
		m.carousel.Previous()
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inHero:
		m.carousel.TouchStart(x, y)
	case msg.Action == tea.MouseActionRelease:
		m.carousel.TouchEnd(x, y)
	case msg.Action == tea.MouseActionMotion && inHero != m.hovering:
		m.hovering = inHero
		m.syncPause()
	}
}

// syncPause holds the carousel while the pointer rests on the hero or the
// terminal has lost focus
func (m *Model) syncPause() {
	m.carousel.SetPaused(m.hovering || m.blurred)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.Close()
	return m, tea.Quit
}

func cycle(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
