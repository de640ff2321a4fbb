// Package i18n provides internationalization support for error messages.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale for every lookup.
const BaseLocale = "en-US"

// Catalog maps error codes to message templates for a specific locale.
type Catalog struct {
	locale   string
	messages map[Code]string
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{
		BaseLocale: NewCatalog(BaseLocale, enUSMessages),
		"pt-BR":    NewCatalog("pt-BR", ptBRMessages),
	}
)

// GetCatalog returns the catalog for the given locale.
// Falls back to en-US if the locale is not found.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}
	if c, ok := lookupCatalog(MatchLocale(requested)); ok {
		return c
	}
	c, _ := lookupCatalog(BaseLocale)
	return c
}

// MatchLocale resolves an Accept-Language style value to the closest
// registered locale tag.
func MatchLocale(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}

	supported := supportedTags()
	matcher := language.NewMatcher(supported)
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return supported[index].String()
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message template with the given metadata.
// Falls back to the error code itself if no template is found.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	tmpl, ok := c.messages[code]
	if !ok {
		return code
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	t, err := template.New("msg").Parse(tmpl)
	if err != nil {
		return tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, metadata); err != nil {
		return tmpl
	}
	return buf.String()
}

// RegisterCatalog registers a new catalog for the given locale.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// NewCatalog creates a new catalog with the given locale and messages.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for key, value := range messages {
		cloned[key] = value
	}
	return &Catalog{
		locale:   locale,
		messages: cloned,
	}
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

// supportedTags lists registered locales with the base locale first so the
// matcher falls back to it.
func supportedTags() []language.Tag {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	tags := []language.Tag{language.MustParse(BaseLocale)}
	for locale := range catalogs {
		if locale == BaseLocale {
			continue
		}
		tag, err := language.Parse(locale)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
