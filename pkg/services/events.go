package services

// EventType names a UI event forwarded to a page
type EventType string

const (
	EventLanguage       EventType = "language"
	EventToggleLanguage EventType = "toggle-language"
	EventImageLoaded    EventType = "image-loaded"
	EventImageFailed    EventType = "image-failed"
	EventResize         EventType = "resize"
	EventScroll         EventType = "scroll"
	EventIntersect      EventType = "intersect"
	EventPointerDown    EventType = "pointer-down"
	EventPointerMove    EventType = "pointer-move"
	EventPointerUp      EventType = "pointer-up"
	EventTouchStart     EventType = "touch-start"
	EventTouchMove      EventType = "touch-move"
	EventTouchEnd       EventType = "touch-end"
	EventClick          EventType = "click"
	EventKeyDown        EventType = "keydown"
	EventAboutScroll    EventType = "about-scroll"
)

// Event is one UI event. Only the fields relevant to Type are read.
type Event struct {
	Type      EventType     `json:"type"`
	Gallery   string        `json:"gallery,omitempty"`
	Item      int           `json:"item,omitempty"`
	Width     float64       `json:"width,omitempty"`
	X         float64       `json:"x,omitempty"`
	Ratio     float64       `json:"ratio,omitempty"`
	Scroll    ScrollMetrics `json:"scroll"`
	ScrollTop float64       `json:"scrollTop,omitempty"`
	Target    string        `json:"target,omitempty"`
	Key       string        `json:"key,omitempty"`
	Lang      string        `json:"lang,omitempty"`
}

// Update describes the view changes produced by an event
type Update struct {
	Language string         `json:"language,omitempty"`
	Texts    []TextUpdate   `json:"texts,omitempty"`
	Image    *ImageUpdate   `json:"image,omitempty"`
	Paddings map[string]int `json:"paddings,omitempty"`
	Active   *string        `json:"active,omitempty"`
	Thumb    *Thumb         `json:"thumb,omitempty"`
	ScrollTo *ScrollTarget  `json:"scrollTo,omitempty"`
	About    *AboutUpdate   `json:"about,omitempty"`
}

// Empty reports whether the update carries no change
func (u Update) Empty() bool {
	return u.Language == "" && len(u.Texts) == 0 && u.Image == nil && len(u.Paddings) == 0 &&
		u.Active == nil && u.Thumb == nil && u.ScrollTo == nil && u.About == nil
}

// TextUpdate is the new content of one text block
type TextUpdate struct {
	Gallery  string `json:"gallery"`
	Item     int    `json:"item"`
	Key      string `json:"key"`
	HTML     string `json:"html"`
	FontSize int    `json:"fontSize"`
}

// ImageUpdate is the new state of one image slot
type ImageUpdate struct {
	Gallery string `json:"gallery"`
	Item    int    `json:"item"`
	Src     string `json:"src,omitempty"`
	Loaded  bool   `json:"loaded"`
	Hidden  bool   `json:"hidden"`
}

// ScrollTarget asks the client to scroll a gallery
type ScrollTarget struct {
	Gallery string  `json:"gallery"`
	Left    float64 `json:"left"`
}

// AboutUpdate is the new state of the about overlay
type AboutUpdate struct {
	Open      bool    `json:"open"`
	HTML      string  `json:"html,omitempty"`
	ScrollTop float64 `json:"scrollTop"`
}
