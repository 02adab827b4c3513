// Package seo builds the multilingual URL metadata for the promo site:
// canonical URLs, hreflang alternates, and sitemap enrichment.
//
// The default locale is served at the site root; every other locale lives
// under its own path prefix. The x-default locale is configured separately
// from the site default and the two intentionally disagree in the shipped
// configuration (x-default "en", site default "lv").
package seo

import (
	"errors"
	"fmt"
	"strings"
)

// Alternate is one hreflang link for a page.
type Alternate struct {
	Hreflang string `json:"hreflang"`
	Href     string `json:"href"`
}

// Config describes the site's locale layout.
type Config struct {
	BaseURL       string
	DefaultLocale string
	Locales       []string
	XDefault      string
}

// Site resolves localized URLs for a configured locale layout.
type Site struct {
	baseURL       string
	defaultLocale string
	locales       []string
	xDefault      string
}

// New validates the locale layout and builds a Site.
func New(cfg Config) (*Site, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("seo: base URL is required")
	}
	if len(cfg.Locales) == 0 {
		return nil, errors.New("seo: at least one locale is required")
	}

	s := &Site{
		baseURL:       base,
		defaultLocale: strings.ToLower(strings.TrimSpace(cfg.DefaultLocale)),
		xDefault:      strings.ToLower(strings.TrimSpace(cfg.XDefault)),
	}
	for _, locale := range cfg.Locales {
		locale = strings.ToLower(strings.TrimSpace(locale))
		if locale != "" {
			s.locales = append(s.locales, locale)
		}
	}
	if s.defaultLocale == "" {
		s.defaultLocale = s.locales[0]
	}
	if !s.hasLocale(s.defaultLocale) {
		return nil, fmt.Errorf("seo: default locale %q is not in the locale list", s.defaultLocale)
	}
	if s.xDefault == "" {
		s.xDefault = s.defaultLocale
	}
	if !s.hasLocale(s.xDefault) {
		return nil, fmt.Errorf("seo: x-default locale %q is not in the locale list", s.xDefault)
	}
	return s, nil
}

// Locales returns the configured locales in order.
func (s *Site) Locales() []string { return append([]string(nil), s.locales...) }

// DefaultLocale returns the locale served at the site root.
func (s *Site) DefaultLocale() string { return s.defaultLocale }

// LocalizedPath maps a locale-neutral path to its localized form. The
// default locale keeps the bare path; other locales get a prefix.
func (s *Site) LocalizedPath(path, locale string) string {
	path = normalizePath(path)
	if locale == s.defaultLocale {
		return path
	}
	if path == "/" {
		return "/" + locale
	}
	return "/" + locale + path
}

// Canonical returns the absolute canonical URL for a path in a locale.
func (s *Site) Canonical(path, locale string) string {
	if !s.hasLocale(locale) {
		locale = s.defaultLocale
	}
	return s.baseURL + s.LocalizedPath(path, locale)
}

// Alternates returns one hreflang link per locale plus the x-default entry
// for a locale-neutral path.
func (s *Site) Alternates(path string) []Alternate {
	path = normalizePath(path)

	alts := make([]Alternate, 0, len(s.locales)+1)
	for _, locale := range s.locales {
		alts = append(alts, Alternate{
			Hreflang: locale,
			Href:     s.baseURL + s.LocalizedPath(path, locale),
		})
	}
	alts = append(alts, Alternate{
		Hreflang: "x-default",
		Href:     s.baseURL + s.LocalizedPath(path, s.xDefault),
	})
	return alts
}

// SplitLocale strips a known locale prefix from a localized path, returning
// the locale and the locale-neutral remainder. Unprefixed paths belong to
// the default locale.
func (s *Site) SplitLocale(path string) (locale, neutral string) {
	path = normalizePath(path)
	trimmed := strings.TrimPrefix(path, "/")
	for _, candidate := range s.locales {
		if candidate == s.defaultLocale {
			continue
		}
		if trimmed == candidate {
			return candidate, "/"
		}
		if strings.HasPrefix(trimmed, candidate+"/") {
			return candidate, "/" + strings.TrimPrefix(trimmed, candidate+"/")
		}
	}
	return s.defaultLocale, path
}

func (s *Site) hasLocale(locale string) bool {
	for _, candidate := range s.locales {
		if candidate == locale {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	return path
}
