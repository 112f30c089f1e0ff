package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// DefaultLanguage is used whenever a record has no text for the requested language
const DefaultLanguage = "ES"

// textKeyPrefix prefixes every per-language text array on the wire (textosES, textosEN, ...)
const textKeyPrefix = "textos"

// Kind is the shape of a project
type Kind string

const (
	KindSimple  Kind = "simple"
	KindComplex Kind = "complejo"
)

// Texts holds per-language paragraph arrays keyed by upper-case language code
type Texts map[string][]string

// For returns the paragraphs for lang, falling back to the default language
// and then to an empty slice
func (t Texts) For(lang string) []string {
	if texts := t[strings.ToUpper(lang)]; len(texts) > 0 {
		return texts
	}
	if texts := t[DefaultLanguage]; len(texts) > 0 {
		return texts
	}
	return []string{}
}

// Languages returns the language codes present in the record, sorted
func (t Texts) Languages() []string {
	langs := make([]string, 0, len(t))
	for lang := range t {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Document is the root of the portfolio data file
type Document struct {
	Projects []NamedProject
	About    *About

	extra map[string]json.RawMessage
}

// NamedProject is a (name, project) pair, encoded as a two element JSON array
type NamedProject struct {
	Name    string
	Project *Project
}

// Project represents one portfolio entry or one subproject of a complex entry
type Project struct {
	Kind        Kind
	ImageCount  ImageCount
	Texts       Texts
	Title       string
	Background  string
	Subprojects []NamedProject

	// raw is the record as read, re-emitted on encode so keys this
	// model does not interpret survive a rewrite
	raw     map[string]json.RawMessage
	counted bool
}

// About is the descriptive record shown in the about overlay
type About struct {
	Title    string
	Subtitle string
	Link     string
	Texts    Texts

	raw map[string]json.RawMessage
}

// ImageCount is either a flat count (simple projects) or a count per subproject
type ImageCount struct {
	Total int
	Subs  map[string]int
}

// Nested reports whether the count is a per-subproject mapping
func (c ImageCount) Nested() bool {
	return c.Subs != nil
}

// Sub returns the image count for a subproject, zero when unknown
func (c ImageCount) Sub(name string) int {
	return c.Subs[name]
}

// SetImageCount replaces the image count. A count set this way is always
// written back, even when the record had none and the count is zero.
func (p *Project) SetImageCount(c ImageCount) {
	p.ImageCount = c
	p.counted = true
}

// TextsFor returns the paragraphs of the project for lang with default-language fallback
func (p *Project) TextsFor(lang string) []string {
	if p == nil {
		return []string{}
	}
	return p.Texts.For(lang)
}

// HasText reports whether the project would render any paragraph for lang
func (p *Project) HasText(lang string) bool {
	return len(p.TextsFor(lang)) > 0
}

// Label returns the display label of a named project
func (np NamedProject) Label() string {
	if np.Project != nil && np.Project.Title != "" {
		return np.Project.Title
	}
	return np.Name
}

// TextsFor returns the about paragraphs for lang with default-language fallback
func (a *About) TextsFor(lang string) []string {
	if a == nil {
		return []string{}
	}
	return a.Texts.For(lang)
}

// Project returns the top-level project with the given name
func (d *Document) Project(name string) (*Project, bool) {
	for _, np := range d.Projects {
		if np.Name == name {
			return np.Project, true
		}
	}
	return nil, false
}

// FindTextRecord locates the record backing a text block. A top-level
// project of that name wins; otherwise the last matching subproject in
// document order is used.
func (d *Document) FindTextRecord(name string) (*Project, bool) {
	if d == nil {
		return nil, false
	}
	var found *Project
	ok := false
	for _, np := range d.Projects {
		if np.Name == name {
			return np.Project, true
		}
		if np.Project == nil {
			continue
		}
		for _, sub := range np.Project.Subprojects {
			if sub.Name == name {
				found, ok = sub.Project, true
			}
		}
	}
	return found, ok
}

// Languages returns every language code that appears anywhere in the document
func (d *Document) Languages() []string {
	seen := map[string]bool{}
	var visit func(projects []NamedProject)
	visit = func(projects []NamedProject) {
		for _, np := range projects {
			if np.Project == nil {
				continue
			}
			for _, lang := range np.Project.Texts.Languages() {
				seen[lang] = true
			}
			visit(np.Project.Subprojects)
		}
	}
	visit(d.Projects)
	if d.About != nil {
		for _, lang := range d.About.Texts.Languages() {
			seen[lang] = true
		}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// UnmarshalJSON decodes the document, keeping unknown top-level keys
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document{}
	if value, ok := raw["proyectos"]; ok {
		if err := json.Unmarshal(value, &d.Projects); err != nil {
			return fmt.Errorf("proyectos: %w", err)
		}
		delete(raw, "proyectos")
	}
	if value, ok := raw["about"]; ok {
		if err := json.Unmarshal(value, &d.About); err != nil {
			return fmt.Errorf("about: %w", err)
		}
		delete(raw, "about")
	}
	d.extra = raw
	return nil
}

// MarshalJSON encodes the document with every key it was read with
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(d.extra)+2)
	for key, value := range d.extra {
		out[key] = value
	}
	out["proyectos"] = d.Projects
	if d.About != nil {
		out["about"] = d.About
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a [name, data] pair
func (np *NamedProject) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("project entry must be a [name, data] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("project entry must have 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &np.Name); err != nil {
		return fmt.Errorf("project name: %w", err)
	}
	np.Project = &Project{}
	if err := json.Unmarshal(pair[1], np.Project); err != nil {
		return fmt.Errorf("project %q: %w", np.Name, err)
	}
	return nil
}

// MarshalJSON encodes the pair back into its array form
func (np NamedProject) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{np.Name, np.Project})
}

// UnmarshalJSON decodes either an integer or a name->integer mapping
func (c *ImageCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.HasPrefix(data, []byte("{")) {
		subs := map[string]int{}
		if err := json.Unmarshal(data, &subs); err != nil {
			return fmt.Errorf("imgCount mapping: %w", err)
		}
		c.Total, c.Subs = 0, subs
		for _, n := range subs {
			c.Total += n
		}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*c = ImageCount{}
		return nil
	}
	if err := json.Unmarshal(data, &c.Total); err != nil {
		return fmt.Errorf("imgCount: %w", err)
	}
	c.Subs = nil
	return nil
}

// MarshalJSON encodes the count in the same shape it was read in
func (c ImageCount) MarshalJSON() ([]byte, error) {
	if c.Subs != nil {
		return json.Marshal(c.Subs)
	}
	return json.Marshal(c.Total)
}

// UnmarshalJSON decodes the wire keys, collecting every textos<LANG> array
func (p *Project) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Project{Kind: KindSimple}
	for key, value := range raw {
		var err error
		switch {
		case key == "tipo":
			err = json.Unmarshal(value, &p.Kind)
		case key == "imgCount":
			err = json.Unmarshal(value, &p.ImageCount)
		case key == "titulo" || key == "title":
			err = json.Unmarshal(value, &p.Title)
		case key == "color" || key == "background":
			err = json.Unmarshal(value, &p.Background)
		case key == "subproyectos":
			err = json.Unmarshal(value, &p.Subprojects)
		case isTextKey(key):
			err = p.decodeTexts(key, value)
		}
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
	}
	p.raw = raw
	return nil
}

func isTextKey(key string) bool {
	return strings.HasPrefix(key, textKeyPrefix) && len(key) > len(textKeyPrefix)
}

// copyUninterpreted starts an encoded record from the keys it was read
// with, minus the text arrays which are written from Texts
func copyUninterpreted(raw map[string]json.RawMessage) map[string]interface{} {
	out := make(map[string]interface{}, len(raw)+4)
	for key, value := range raw {
		if !isTextKey(key) {
			out[key] = value
		}
	}
	return out
}

// setAlias writes value under whichever of keys the record was read with,
// or under the first key when the value is not empty
func setAlias(out map[string]interface{}, raw map[string]json.RawMessage, value string, keys ...string) {
	for _, key := range keys {
		if _, ok := raw[key]; ok {
			out[key] = value
			return
		}
	}
	if value != "" {
		out[keys[0]] = value
	}
}

// setTexts writes one array per language, reusing the spelling of the key
// the record was read with
func setTexts(out map[string]interface{}, raw map[string]json.RawMessage, texts Texts) {
	spelled := map[string]string{}
	for key := range raw {
		if isTextKey(key) {
			spelled[strings.ToUpper(strings.TrimPrefix(key, textKeyPrefix))] = key
		}
	}
	for lang, paragraphs := range texts {
		key, ok := spelled[lang]
		if !ok {
			key = textKeyPrefix + lang
		}
		out[key] = paragraphs
	}
}

func (p *Project) decodeTexts(key string, value json.RawMessage) error {
	var texts []string
	if err := json.Unmarshal(value, &texts); err != nil {
		return err
	}
	if p.Texts == nil {
		p.Texts = Texts{}
	}
	p.Texts[strings.ToUpper(strings.TrimPrefix(key, textKeyPrefix))] = texts
	return nil
}

// MarshalJSON encodes the project with its original wire keys. Defaults
// the record did not carry (simple kind, zero count) are not added.
func (p Project) MarshalJSON() ([]byte, error) {
	out := copyUninterpreted(p.raw)
	if _, ok := p.raw["tipo"]; ok || (p.Kind != "" && p.Kind != KindSimple) {
		out["tipo"] = p.Kind
	}
	if _, ok := p.raw["imgCount"]; ok || p.counted || p.ImageCount.Total != 0 || p.ImageCount.Nested() {
		out["imgCount"] = p.ImageCount
	}
	setAlias(out, p.raw, p.Title, "titulo", "title")
	setAlias(out, p.raw, p.Background, "color", "background")
	if p.Subprojects != nil {
		out["subproyectos"] = p.Subprojects
	}
	setTexts(out, p.raw, p.Texts)
	return json.Marshal(out)
}

// UnmarshalJSON decodes the about record
func (a *About) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = About{}
	for key, value := range raw {
		var err error
		switch {
		case key == "titulo" || key == "title":
			err = json.Unmarshal(value, &a.Title)
		case key == "subtitulo" || key == "subtitle":
			err = json.Unmarshal(value, &a.Subtitle)
		case key == "enlace" || key == "link":
			err = json.Unmarshal(value, &a.Link)
		case isTextKey(key):
			var texts []string
			if err = json.Unmarshal(value, &texts); err == nil {
				if a.Texts == nil {
					a.Texts = Texts{}
				}
				a.Texts[strings.ToUpper(strings.TrimPrefix(key, textKeyPrefix))] = texts
			}
		}
		if err != nil {
			return fmt.Errorf("about field %q: %w", key, err)
		}
	}
	a.raw = raw
	return nil
}

// MarshalJSON encodes the about record with its original wire keys
func (a About) MarshalJSON() ([]byte, error) {
	out := copyUninterpreted(a.raw)
	setAlias(out, a.raw, a.Title, "titulo", "title")
	setAlias(out, a.raw, a.Subtitle, "subtitulo", "subtitle")
	setAlias(out, a.raw, a.Link, "enlace", "link")
	setTexts(out, a.raw, a.Texts)
	return json.Marshal(out)
}
