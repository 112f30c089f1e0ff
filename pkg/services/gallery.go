package services

import (
	"context"
	"fmt"

	"portfolio/pkg/models"
	"portfolio/pkg/render"
)

// ItemKind distinguishes image items from text blocks
type ItemKind int

const (
	ItemImage ItemKind = iota
	ItemText
)

// Item is one entry of a gallery strip
type Item struct {
	Kind ItemKind
	Slot *Slot        // image items only
	Key  string       // text items only: name of the backing record
	Node *render.Node // div.gallery-item or div.gallery-text
}

// Gallery is the horizontal strip of one project
type Gallery struct {
	ID      string
	Section *render.Node // div.project
	Node    *render.Node // div.gallery
	Items   []Item

	widths    map[*Slot]float64
	padding   int
	scroll    ScrollMetrics
	listeners map[int]func(ScrollMetrics)
	nextSub   int
}

// Slots returns the image slots of the gallery in order
func (g *Gallery) Slots() []*Slot {
	var slots []*Slot
	for _, it := range g.Items {
		if it.Kind == ItemImage {
			slots = append(slots, it.Slot)
		}
	}
	return slots
}

// TextBlocks returns the text block nodes in order
func (g *Gallery) TextBlocks() []*render.Node {
	var blocks []*render.Node
	for _, it := range g.Items {
		if it.Kind == ItemText {
			blocks = append(blocks, it.Node)
		}
	}
	return blocks
}

// Padding returns the horizontal padding currently applied
func (g *Gallery) Padding() int {
	return g.padding
}

func (g *Gallery) setPadding(px int) {
	g.padding = px
	g.Node.SetStyle("padding-left", fmt.Sprintf("%dpx", px))
	g.Node.SetStyle("padding-right", fmt.Sprintf("%dpx", px))
}

// Builder turns project data into galleries
type Builder struct {
	resolver *Resolver
}

// NewBuilder creates a builder; resolver may be nil to leave slots pending
func NewBuilder(resolver *Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build creates the gallery of one project in the given language.
// Simple projects get their images followed by one text block; complex
// projects get, per subproject, its images and a text block when it has
// text, then one trailing block for the whole project.
func (b *Builder) Build(ctx context.Context, np models.NamedProject, lang string) *Gallery {
	g := &Gallery{
		ID:        np.Name,
		Section:   render.El("section", "project").WithID(np.Name),
		Node:      render.El("div", "gallery").SetAttr("data-gallery", np.Name),
		widths:    map[*Slot]float64{},
		listeners: map[int]func(ScrollMetrics){},
	}
	g.Section.Append(g.Node)

	p := np.Project
	if p == nil {
		p = &models.Project{Kind: models.KindSimple}
	}
	if p.Background != "" {
		g.Section.SetStyle("background-color", p.Background)
	}

	switch p.Kind {
	case models.KindComplex:
		for _, sub := range p.Subprojects {
			b.addImages(ctx, g, np.Name+"/"+sub.Name, p.ImageCount.Sub(sub.Name))
			if sub.Project.HasText(lang) {
				b.addText(g, sub.Name, sub.Label(), sub.Project.TextsFor(lang))
			}
		}
	default:
		b.addImages(ctx, g, np.Name, p.ImageCount.Total)
	}
	b.addText(g, np.Name, np.Label(), p.TextsFor(lang))

	g.setPadding(MinPadding)
	return g
}

func (b *Builder) addImages(ctx context.Context, g *Gallery, path string, count int) {
	for i := 1; i <= count; i++ {
		slot := NewSlot(path, i)
		b.resolver.Resolve(ctx, slot)
		item := Item{Kind: ItemImage, Slot: slot, Node: render.El("div", "gallery-item")}
		item.Node.Append(render.El("img").
			SetAttr("alt", slot.Alt()).
			SetAttr("loading", "lazy").
			SetAttr("data-item", fmt.Sprintf("%d", len(g.Items))))
		syncSlotNode(item)
		g.Items = append(g.Items, item)
		g.Node.Append(item.Node)
	}
}

func (b *Builder) addText(g *Gallery, key, title string, paragraphs []string) {
	block := NewTextBlock(key, title, paragraphs)
	g.Items = append(g.Items, Item{Kind: ItemText, Key: key, Node: block})
	g.Node.Append(block)
}

// syncSlotNode reflects the slot state on its item node
func syncSlotNode(item Item) {
	slot := item.Slot
	img := item.Node.First("img")
	if slot.State == SlotPending {
		// Clients start from the first candidate.
		img.SetAttr("src", "data/"+fmt.Sprintf("%s/%d.%s", slot.Path, slot.Index, Extensions[0]))
	} else if src := slot.Src(); src != "" {
		img.SetAttr("src", src)
	}
	img.SetAttr("data-ext", slot.Extension())
	img.ToggleClass("loaded", slot.State == SlotLoaded)
	item.Node.Hidden = slot.Hidden()
}
