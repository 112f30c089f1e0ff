package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"portfolio/pkg/models"
	"portfolio/pkg/render"
)

const (
	defaultViewport = 1280
	siteNameID      = "site-name"
	scrollbarID     = "global-scrollbar"
	thumbID         = "scrollbar-thumb"
)

// Options configures a page
type Options struct {
	Language  string
	Languages []string
	SiteName  string
	Viewport  float64
	Resolver  *Resolver
}

// Page is the application state of one rendered portfolio: the document,
// the active language, every gallery and the interactive controllers.
// All methods are safe to call from several goroutines; events are applied
// one at a time.
type Page struct {
	mu sync.Mutex

	doc       *models.Document
	lang      *LanguageStore
	galleries []*Gallery
	byID      map[string]*Gallery
	menu      *Menu
	spy       *ScrollSpy
	scrollbar *Scrollbar
	centering *Centering
	resize    *Debouncer
	about     *AboutOverlay
	selectors []*render.Node
	root      *render.Node

	textRenders int
	onUpdate    func(Update)
}

// NewPage builds every gallery of doc and wires the controllers
func NewPage(ctx context.Context, doc *models.Document, opts Options) *Page {
	if opts.Viewport <= 0 {
		opts.Viewport = defaultViewport
	}
	languages := opts.Languages
	if len(languages) == 0 {
		languages = doc.Languages()
	}
	if len(languages) == 0 {
		languages = []string{models.DefaultLanguage}
	}
	if opts.Language == "" {
		opts.Language = models.DefaultLanguage
	}

	p := &Page{
		doc:       doc,
		lang:      NewLanguageStore(opts.Language, languages),
		byID:      map[string]*Gallery{},
		menu:      BuildMenu(doc),
		spy:       NewScrollSpy(VisibilityThreshold),
		scrollbar: NewScrollbar(opts.Viewport),
		centering: NewCentering(opts.Viewport),
		resize:    NewDebouncer(ResizeDebounce),
		about:     NewAboutOverlay(doc.About),
	}

	builder := NewBuilder(opts.Resolver)
	container := render.El("main", "projects-container").WithID("projects-container")
	for _, np := range doc.Projects {
		g := builder.Build(ctx, np, p.lang.Current())
		p.galleries = append(p.galleries, g)
		p.byID[g.ID] = g
		p.centering.Register(g)
		container.Append(g.Section)
	}

	p.spy.OnChange(func(id string) {
		p.menu.SetActive(id)
		if g, ok := p.byID[id]; ok {
			p.scrollbar.Attach(g)
		}
	})

	selector := render.El("div", "language-selector").WithID("language-toggle")
	for _, lang := range p.lang.Supported() {
		btn := render.El("button", "lang-option").
			SetAttr("type", "button").
			SetAttr("data-lang", lang).
			SetAttr("title", LanguageName(lang)).
			WithText(lang)
		btn.ToggleClass("active", lang == p.lang.Current())
		p.selectors = append(p.selectors, btn)
		selector.Append(btn)
	}

	siteName := opts.SiteName
	if siteName == "" && doc.About != nil {
		siteName = doc.About.Title
	}
	header := render.El("header", "site-header").Append(
		render.El("a", "site-name").WithID(siteNameID).SetAttr("href", "#").WithText(siteName),
		p.menu.Node,
		selector,
	)
	p.root = render.El("div", "app").WithID("app").
		SetAttr("lang", p.lang.Current()).
		Append(header, container, p.scrollbar.Node, p.about.Node)
	return p
}

// OnUpdate registers fn to receive updates produced outside Dispatch,
// such as debounced resizes
func (p *Page) OnUpdate(fn func(Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Close drops any pending debounced work
func (p *Page) Close() {
	p.resize.Stop()
}

// Language returns the active language
func (p *Page) Language() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lang.Current()
}

// Languages returns the selectable languages
func (p *Page) Languages() []string {
	return p.lang.Supported()
}

// Galleries returns the galleries in document order
func (p *Page) Galleries() []*Gallery {
	return p.galleries
}

// Gallery returns the gallery of a project
func (p *Page) Gallery(id string) (*Gallery, bool) {
	g, ok := p.byID[id]
	return g, ok
}

// Menu returns the navigation menu
func (p *Page) Menu() *Menu {
	return p.menu
}

// Scrollbar returns the global scrollbar
func (p *Page) Scrollbar() *Scrollbar {
	return p.scrollbar
}

// About returns the about overlay
func (p *Page) About() *AboutOverlay {
	return p.about
}

// Root returns the view tree of the page
func (p *Page) Root() *render.Node {
	return p.root
}

// TextRenders returns how many text blocks were re-rendered by language changes
func (p *Page) TextRenders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.textRenders
}

// HTML renders the page
func (p *Page) HTML() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return render.String(p.root)
}

// SetLanguage switches the active language and re-renders every text block.
// It reports false and does nothing when lang is already active.
func (p *Page) SetLanguage(lang string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	var u Update
	return p.setLanguage(lang, &u)
}

func (p *Page) setLanguage(lang string, u *Update) bool {
	if !p.lang.Set(lang) {
		return false
	}
	current := p.lang.Current()
	p.root.SetAttr("lang", current)
	for _, btn := range p.selectors {
		btn.ToggleClass("active", btn.Attr("data-lang") == current)
	}

	u.Language = current
	for _, g := range p.galleries {
		for i, it := range g.Items {
			if it.Kind != ItemText {
				continue
			}
			rec, ok := p.doc.FindTextRecord(it.Key)
			if !ok {
				continue
			}
			FillParagraphs(it.Node, rec.TextsFor(current))
			p.textRenders++
			inner, err := render.InnerString(it.Node)
			if err != nil {
				log.Printf("Warning: rendering text block %s: %v", it.Key, err)
				continue
			}
			u.Texts = append(u.Texts, TextUpdate{
				Gallery:  g.ID,
				Item:     i,
				Key:      it.Key,
				HTML:     inner,
				FontSize: FontSize(VisibleLength(rec.TextsFor(current))),
			})
		}
	}

	if p.about.IsOpen() {
		p.about.Render(current)
		u.About = p.aboutUpdate()
	}
	return true
}

// Dispatch applies one UI event and returns what changed
func (p *Page) Dispatch(e Event) (Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var u Update
	switch e.Type {
	case EventLanguage:
		p.setLanguage(e.Lang, &u)
	case EventToggleLanguage:
		p.setLanguage(p.lang.Next(), &u)
	case EventImageLoaded, EventImageFailed:
		return u, p.imageEvent(e, &u)
	case EventResize:
		p.scheduleResize(e.Width)
	case EventScroll:
		g, err := p.gallery(e.Gallery)
		if err != nil {
			return u, err
		}
		g.SetScroll(e.Scroll)
		if p.scrollbar.Gallery() == g {
			u.Thumb = thumbPtr(p.scrollbar.Thumb())
		}
	case EventIntersect:
		if _, err := p.gallery(e.Gallery); err != nil {
			return u, err
		}
		if p.spy.Observe(e.Gallery, e.Ratio) {
			active := p.spy.Active()
			u.Active = &active
			u.Thumb = thumbPtr(p.scrollbar.Thumb())
		}
	case EventPointerDown, EventTouchStart:
		if e.Target == thumbID {
			p.scrollbar.PointerDown(e.X)
		}
	case EventPointerMove, EventTouchMove:
		p.scrollAction(&u, func() { p.scrollbar.PointerMove(e.X) })
	case EventPointerUp, EventTouchEnd:
		p.scrollbar.PointerUp()
	case EventClick:
		p.click(e, &u)
	case EventKeyDown:
		if p.about.KeyDown(e.Key) {
			u.About = p.aboutUpdate()
		}
	case EventAboutScroll:
		p.about.SetScrollTop(e.ScrollTop)
	default:
		return u, fmt.Errorf("unknown event type %q", e.Type)
	}
	return u, nil
}

func (p *Page) gallery(id string) (*Gallery, error) {
	g, ok := p.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown gallery %q", id)
	}
	return g, nil
}

func (p *Page) imageEvent(e Event, u *Update) error {
	g, err := p.gallery(e.Gallery)
	if err != nil {
		return err
	}
	if e.Item < 0 || e.Item >= len(g.Items) || g.Items[e.Item].Kind != ItemImage {
		return fmt.Errorf("gallery %q has no image item %d", e.Gallery, e.Item)
	}
	item := g.Items[e.Item]
	slot := item.Slot
	if slot.State == SlotPending {
		slot.Start()
	}

	if e.Type == EventImageLoaded {
		slot.Load()
		if slot.State == SlotLoaded && e.Width > 0 {
			p.centering.ImageLoaded(g, slot, e.Width)
		}
	} else {
		if _, ok := slot.Fail(); !ok && slot.Hidden() {
			log.Printf("Warning: no image found for %s", slot.Alt())
		}
		p.centering.ImageFailed(g)
	}

	syncSlotNode(item)
	u.Image = &ImageUpdate{
		Gallery: g.ID,
		Item:    e.Item,
		Src:     slot.Src(),
		Loaded:  slot.State == SlotLoaded,
		Hidden:  slot.Hidden(),
	}
	u.Paddings = map[string]int{g.ID: g.Padding()}
	return nil
}

func (p *Page) click(e Event, u *Update) {
	switch e.Target {
	case siteNameID:
		p.about.Open(p.lang.Current())
		u.About = p.aboutUpdate()
	case scrollbarID:
		p.scrollAction(u, func() { p.scrollbar.TrackClick(e.X) })
	default:
		if p.about.Click(e.Target) {
			u.About = p.aboutUpdate()
		}
	}
}

// scrollAction runs a scrollbar interaction and reports the resulting
// gallery scroll when it moved
func (p *Page) scrollAction(u *Update, action func()) {
	g := p.scrollbar.Gallery()
	if g == nil {
		return
	}
	before := g.Scroll().ScrollLeft
	action()
	if after := g.Scroll().ScrollLeft; after != before {
		u.ScrollTo = &ScrollTarget{Gallery: g.ID, Left: after}
		u.Thumb = thumbPtr(p.scrollbar.Thumb())
	}
}

func (p *Page) scheduleResize(width float64) {
	if width <= 0 {
		return
	}
	p.resize.Trigger(func() {
		p.mu.Lock()
		p.centering.Resize(width)
		p.scrollbar.SetTrack(width)
		u := Update{Paddings: p.paddings(), Thumb: thumbPtr(p.scrollbar.Thumb())}
		hook := p.onUpdate
		p.mu.Unlock()
		if hook != nil {
			hook(u)
		}
	})
}

// FlushResize applies a pending debounced resize immediately
func (p *Page) FlushResize() {
	p.resize.Flush()
}

func (p *Page) paddings() map[string]int {
	out := make(map[string]int, len(p.galleries))
	for _, g := range p.galleries {
		out[g.ID] = g.Padding()
	}
	return out
}

func (p *Page) aboutUpdate() *AboutUpdate {
	au := &AboutUpdate{Open: p.about.IsOpen(), ScrollTop: p.about.ScrollTop()}
	if au.Open {
		html, err := render.InnerString(p.about.text)
		if err != nil {
			log.Printf("Warning: rendering about text: %v", err)
		}
		au.HTML = html
	}
	return au
}

func thumbPtr(t Thumb) *Thumb {
	return &t
}

// ErrorView is the full-page replacement shown when the document cannot be loaded
func ErrorView(err error) *render.Node {
	return render.El("div", "load-error").WithID("app").Append(
		render.El("h1").WithText("Error al cargar el portfolio"),
		render.El("p", "error-detail").WithText(err.Error()),
		render.El("p", "error-hint").WithText("Por favor, recarga la página."),
	)
}
