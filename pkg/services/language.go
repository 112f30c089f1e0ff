package services

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"portfolio/pkg/models"
)

// NormalizeLanguage maps a language code or tag (es, en-US, EN) to the
// upper-case base code used by the data file
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	base, _ := tag.Base()
	return strings.ToUpper(base.String())
}

// LanguageName returns the name of a language written in that language,
// or the code itself when it is unknown
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

// LanguageStore holds the active language of a page
type LanguageStore struct {
	current   string
	supported []string
}

// NewLanguageStore creates a store set to def. An empty supported list
// accepts any language.
func NewLanguageStore(def string, supported []string) *LanguageStore {
	s := &LanguageStore{current: NormalizeLanguage(def)}
	if s.current == "" {
		s.current = models.DefaultLanguage
	}
	for _, lang := range supported {
		s.supported = append(s.supported, NormalizeLanguage(lang))
	}
	return s
}

// Current returns the active language
func (s *LanguageStore) Current() string {
	return s.current
}

// Supported returns the selectable languages
func (s *LanguageStore) Supported() []string {
	return s.supported
}

// Supports reports whether lang can be selected
func (s *LanguageStore) Supports(lang string) bool {
	if len(s.supported) == 0 {
		return lang != ""
	}
	for _, l := range s.supported {
		if l == lang {
			return true
		}
	}
	return false
}

// Set switches to lang. It returns false when lang is already active or
// not selectable, in which case nothing changes.
func (s *LanguageStore) Set(lang string) bool {
	lang = NormalizeLanguage(lang)
	if lang == s.current || !s.Supports(lang) {
		return false
	}
	s.current = lang
	return true
}

// Next returns the language following the active one, wrapping around
func (s *LanguageStore) Next() string {
	for i, l := range s.supported {
		if l == s.current {
			return s.supported[(i+1)%len(s.supported)]
		}
	}
	if len(s.supported) > 0 {
		return s.supported[0]
	}
	return s.current
}
