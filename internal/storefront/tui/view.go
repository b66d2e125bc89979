package tui

import (
	"fmt"
	"strings"

	"github.com/example/lastara-storefront/internal/storefront/carousel"
	"github.com/example/lastara-storefront/internal/storefront/catalog"
	"github.com/example/lastara-storefront/internal/storefront/hero"
	"github.com/example/lastara-storefront/internal/storefront/testimonials"
)

const (
	// rows above the hero box
	heroTop = 1
	// five content lines plus the border
	heroHeight = 7

	defaultWidth = 80
	minListRows  = 3
	defaultRows  = 8

	quotesShown = 2
)

func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	b.WriteString(m.styles.Brand.Render("LASTARA") + m.styles.Dim.Render("  fine jewellery"))
	b.WriteString("\n")
	b.WriteString(m.renderHero(width))
	b.WriteString("\n")
	b.WriteString(m.renderCatalog(width))
	b.WriteString("\n")
	b.WriteString(m.renderTestimonials(width))
	b.WriteString("\n")
	b.WriteString(m.renderNewsletter())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Help.Render(m.helpLine()))
	return b.String()
}

func (m Model) renderHero(width int) string {
	snap := m.carousel.Snapshot()
	inner := width - 4
	if inner < 10 {
		inner = 10
	}

	var slide hero.Slide
	if slides := m.deck.Items(); snap.Index < len(slides) {
		slide = slides[snap.Index]
	}

	cta := ""
	if slide.HasCTA() {
		cta = m.styles.CTA.Render(truncate(slide.ButtonText, inner/2)) + " " + m.styles.Dim.Render(truncate(slide.ButtonLink, inner/2-3))
	}

	lines := []string{
		m.styles.Title.Render(truncate(slide.Title, inner)),
		m.styles.Subtitle.Render(truncate(slide.Subtitle, inner)),
		cta,
		m.styles.Dim.Render(truncate(slide.ImageURL, inner)),
		m.renderDots(snap),
	}
	return m.styles.Hero.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderDots(snap carousel.Snapshot) string {
	dots := make([]string, snap.Length)
	for i := range dots {
		if i == snap.Index {
			dots[i] = m.styles.DotOn.Render("●")
		} else {
			dots[i] = m.styles.DotOff.Render("○")
		}
	}
	line := strings.Join(dots, " ")
	if snap.State == carousel.Paused {
		line += m.styles.Dim.Render("  paused")
	}
	return line
}

func (m Model) renderCatalog(width int) string {
	snap := m.view.Snapshot()
	crit := snap.Criteria

	var b strings.Builder
	b.WriteString(m.styles.Section.Render("Collection"))
	b.WriteString("\n")
	b.WriteString(m.field("Search", m.focus == focusSearch) + m.search.View())
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s%s   %s%s\n",
		m.field("Category", false), optionLabel(crit.Category),
		m.field("Purity", false), optionLabel(crit.Purity)))
	b.WriteString(m.field("Price", m.focus == focusMinPrice || m.focus == focusMaxPrice) +
		m.minPrice.View() + " – " + m.maxPrice.View())
	if m.priceErr != "" {
		b.WriteString("  " + m.styles.Error.Render(m.priceErr))
	}
	b.WriteString("\n\n")

	switch {
	case !snap.Loaded:
		b.WriteString(m.styles.Dim.Render("Loading products…"))
		return b.String()
	case len(snap.Items) == 0:
		b.WriteString(m.styles.Dim.Render("No products found"))
		return b.String()
	}

	b.WriteString(m.styles.Dim.Render(fmt.Sprintf("Showing %d of %d products", len(snap.Items), snap.Total)))
	for _, it := range visible(snap.Items, m.offset, m.listRows()) {
		b.WriteString("\n")
		b.WriteString(m.renderItem(it, width))
	}
	return b.String()
}

func (m Model) renderItem(it catalog.Item, width int) string {
	price := "Price on request"
	if total, ok := it.TotalPrice(); ok {
		price = catalog.FormatINR(total)
	}
	weight := ""
	if it.Weight != nil {
		weight = fmt.Sprintf("%.2f g", *it.Weight)
	}

	titleWidth := width - 46
	if titleWidth < 12 {
		titleWidth = 12
	}
	return fmt.Sprintf("%-*s %-10s %-4s %9s  %s",
		titleWidth, truncate(it.Title, titleWidth),
		truncate(it.Category, 10), truncate(it.Purity, 4), weight,
		m.styles.Price.Render(price))
}

func (m Model) renderTestimonials(width int) string {
	var b strings.Builder
	b.WriteString(m.styles.Section.Render("What Our Customers Say"))
	for _, t := range testimonials.Window(m.board.Items(), m.quote, quotesShown) {
		b.WriteString("\n")
		b.WriteString(m.styles.Quote.Render(truncate("“"+t.Message+"”", width-2)))
		b.WriteString("\n")
		b.WriteString(m.styles.Dim.Render("  ★★★★★ " + t.Name + ", verified customer"))
	}
	return b.String()
}

func (m Model) renderNewsletter() string {
	var b strings.Builder
	b.WriteString(m.styles.Section.Render("New arrivals on WhatsApp"))
	b.WriteString("\n")
	b.WriteString(m.field("Phone", m.focus == focusPhone) + m.phone.View())

	switch {
	case m.submitting:
		b.WriteString("  " + m.styles.Dim.Render("Subscribing…"))
	case m.status.text != "" && m.status.ok:
		b.WriteString("\n" + m.styles.Success.Render(m.status.text))
	case m.status.text != "":
		b.WriteString("\n" + m.styles.Error.Render(m.status.text))
	}
	return b.String()
}

func (m Model) field(label string, focused bool) string {
	if focused {
		return m.styles.Selected.Render("▸ " + label + ": ")
	}
	return m.styles.Dim.Render("  " + label + ": ")
}

func (m Model) helpLine() string {
	if m.focus != focusBrowse {
		if m.focus == focusPhone {
			return "enter subscribe • tab next field • esc back"
		}
		return "type to filter • tab next field • esc back"
	}
	return "←/→ slides • 1-9 jump • space pause • / search • c category • p purity • tab fields • x clear • t reviews • n newsletter • r reload • q quit"
}

func (m Model) listRows() int {
	if m.height <= 0 {
		return defaultRows
	}
	// header, hero, filters, testimonials, newsletter and help
	rows := m.height - heroTop - heroHeight - 16 - 2 - 2*quotesShown
	if rows < minListRows {
		return minListRows
	}
	return rows
}

func visible(items []catalog.Item, offset, rows int) []catalog.Item {
	if offset >= len(items) {
		offset = 0
	}
	end := offset + rows
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func optionLabel(v string) string {
	if v == catalog.All {
		return "All"
	}
	return v
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
