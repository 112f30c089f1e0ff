package services

import (
	"portfolio/pkg/models"
	"portfolio/pkg/render"
)

const (
	aboutID      = "about-modal"
	aboutCloseID = "close-about"
)

// AboutOverlay is the toggle-able about panel
type AboutOverlay struct {
	Node *render.Node

	data      *models.About
	content   *render.Node
	text      *render.Node
	open      bool
	scrollTop float64
	renders   int
}

// NewAboutOverlay builds the closed overlay for the about record
func NewAboutOverlay(about *models.About) *AboutOverlay {
	if about == nil {
		about = &models.About{}
	}
	a := &AboutOverlay{
		Node:    render.El("div", "about-modal", "hidden").WithID(aboutID),
		content: render.El("div", "about-content"),
		text:    render.El("div", "about-text"),
		data:    about,
	}
	a.content.Append(
		render.El("button", "close-about").WithID(aboutCloseID).SetAttr("type", "button").WithText("×"),
		render.El("h2", "about-title").WithText(about.Title),
		render.El("h3", "about-subtitle").WithText(about.Subtitle),
		a.text,
	)
	a.Node.Append(a.content)
	return a
}

// IsOpen reports whether the overlay is visible
func (a *AboutOverlay) IsOpen() bool {
	return a.open
}

// ScrollTop returns the internal scroll position
func (a *AboutOverlay) ScrollTop() float64 {
	return a.scrollTop
}

// SetScrollTop records the internal scroll position
func (a *AboutOverlay) SetScrollTop(top float64) {
	a.scrollTop = top
}

// Open renders the overlay in lang and shows it scrolled to the top
func (a *AboutOverlay) Open(lang string) {
	a.Render(lang)
	a.open = true
	a.scrollTop = 0
	a.Node.RemoveClass("hidden")
}

// Render replaces the paragraphs and footer link, keeping title and subtitle
func (a *AboutOverlay) Render(lang string) {
	a.text.Children = nil
	for _, p := range a.data.TextsFor(lang) {
		a.text.Append(render.El("p").WithRaw(p))
	}
	if a.data.Link != "" {
		a.text.Append(render.El("a", "about-link").
			SetAttr("href", a.data.Link).
			SetAttr("target", "_blank").
			SetAttr("rel", "noopener").
			WithText(a.data.Link))
	}
	a.renders++
}

// Renders returns how many times the paragraphs were rendered
func (a *AboutOverlay) Renders() int {
	return a.renders
}

// Close hides the overlay
func (a *AboutOverlay) Close() {
	a.open = false
	a.Node.AddClass("hidden")
}

// Click handles a click whose innermost target has the given id. The close
// button and the backdrop itself close the overlay; clicks inside the
// content do not.
func (a *AboutOverlay) Click(target string) bool {
	if !a.open {
		return false
	}
	if target == aboutCloseID || target == aboutID {
		a.Close()
		return true
	}
	return false
}

// KeyDown closes the overlay on Escape
func (a *AboutOverlay) KeyDown(key string) bool {
	if a.open && (key == "Escape" || key == "Esc") {
		a.Close()
		return true
	}
	return false
}
