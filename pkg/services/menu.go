package services

import (
	"portfolio/pkg/models"
	"portfolio/pkg/render"
)

// VisibilityThreshold is the visible ratio at which a section counts as in view
const VisibilityThreshold = 0.5

// Menu is the navigation list with one entry per project
type Menu struct {
	Node    *render.Node
	entries map[string]*render.Node
	order   []string
}

// BuildMenu creates one anchor per top-level project. Complex projects get
// an indented sub-list whose links point at the parent section.
func BuildMenu(doc *models.Document) *Menu {
	m := &Menu{
		Node:    render.El("nav", "menu").WithID("menu"),
		entries: map[string]*render.Node{},
	}
	for _, np := range doc.Projects {
		item := render.El("div", "menu-item")
		link := render.El("a", "menu-link").
			SetAttr("href", "#"+np.Name).
			SetAttr("data-project", np.Name).
			WithText(np.Label())
		item.Append(link)

		if np.Project != nil && np.Project.Kind == models.KindComplex && len(np.Project.Subprojects) > 0 {
			subs := render.El("div", "menu-sub")
			for _, sub := range np.Project.Subprojects {
				subs.Append(render.El("a", "menu-sublink").
					SetAttr("href", "#"+np.Name).
					WithText(sub.Label()))
			}
			item.Append(subs)
		}

		m.Node.Append(item)
		m.entries[np.Name] = link
		m.order = append(m.order, np.Name)
	}
	return m
}

// SetActive marks exactly the entry of id as active; an empty id clears all
func (m *Menu) SetActive(id string) {
	for _, name := range m.order {
		m.entries[name].ToggleClass("active", name == id)
	}
}

// Active returns the ids of the entries currently marked active
func (m *Menu) Active() []string {
	var active []string
	for _, name := range m.order {
		if m.entries[name].HasClass("active") {
			active = append(active, name)
		}
	}
	return active
}

// ScrollSpy tracks which project section is in view. When several sections
// pass the threshold at once, the most recently intersecting one wins; when
// it leaves, the most recent of those still intersecting takes over.
type ScrollSpy struct {
	threshold    float64
	intersecting map[string]uint64
	seq          uint64
	active       string
	listeners    []func(id string)
}

// NewScrollSpy creates a spy using threshold as the visible ratio
func NewScrollSpy(threshold float64) *ScrollSpy {
	return &ScrollSpy{threshold: threshold, intersecting: map[string]uint64{}}
}

// OnChange registers fn to be called with the new active id
func (s *ScrollSpy) OnChange(fn func(id string)) {
	s.listeners = append(s.listeners, fn)
}

// Active returns the id in view, empty when none
func (s *ScrollSpy) Active() string {
	return s.active
}

// Observe records the visible ratio of a section and reports whether the
// active section changed
func (s *ScrollSpy) Observe(id string, ratio float64) bool {
	next := s.active
	if ratio >= s.threshold {
		s.seq++
		s.intersecting[id] = s.seq
		next = id
	} else {
		delete(s.intersecting, id)
		if id == s.active {
			next = s.mostRecent()
		}
	}
	if next == s.active {
		return false
	}
	s.active = next
	for _, fn := range s.listeners {
		fn(next)
	}
	return true
}

func (s *ScrollSpy) mostRecent() string {
	best, bestSeq := "", uint64(0)
	for id, seq := range s.intersecting {
		if seq > bestSeq {
			best, bestSeq = id, seq
		}
	}
	return best
}
