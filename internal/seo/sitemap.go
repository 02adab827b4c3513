package seo

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNamespace   = "http://www.w3.org/1999/xhtml"
)

// sitemapIn is the decode side: existing alternate links are ignored and
// regenerated, which keeps enrichment stable when run twice over its own
// output.
type sitemapIn struct {
	XMLName xml.Name       `xml:"urlset"`
	URLs    []sitemapURLIn `xml:"url"`
}

type sitemapURLIn struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapOut struct {
	XMLName    xml.Name        `xml:"urlset"`
	Xmlns      string          `xml:"xmlns,attr"`
	XmlnsXhtml string          `xml:"xmlns:xhtml,attr"`
	URLs       []sitemapURLOut `xml:"url"`
}

type sitemapURLOut struct {
	Loc        string      `xml:"loc"`
	LastMod    string      `xml:"lastmod,omitempty"`
	ChangeFreq string      `xml:"changefreq,omitempty"`
	Priority   string      `xml:"priority,omitempty"`
	Links      []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// EnrichSitemap reads a sitemap urlset and writes it back with hreflang
// alternate links attached to every URL. Entries whose loc does not belong
// to the configured base URL pass through unmodified.
func (s *Site) EnrichSitemap(r io.Reader, w io.Writer) error {
	var in sitemapIn
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("seo: decode sitemap: %w", err)
	}

	out := sitemapOut{
		Xmlns:      sitemapNamespace,
		XmlnsXhtml: xhtmlNamespace,
		URLs:       make([]sitemapURLOut, 0, len(in.URLs)),
	}

	for _, u := range in.URLs {
		entry := sitemapURLOut{
			Loc:        u.Loc,
			LastMod:    u.LastMod,
			ChangeFreq: u.ChangeFreq,
			Priority:   u.Priority,
		}
		if path, ok := s.sitePath(u.Loc); ok {
			_, neutral := s.SplitLocale(path)
			for _, alt := range s.Alternates(neutral) {
				entry.Links = append(entry.Links, xhtmlLink{
					Rel:      "alternate",
					Hreflang: alt.Hreflang,
					Href:     alt.Href,
				})
			}
		}
		out.URLs = append(out.URLs, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("seo: encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (s *Site) sitePath(loc string) (string, bool) {
	loc = strings.TrimSpace(loc)
	if loc == s.baseURL {
		return "/", true
	}
	if strings.HasPrefix(loc, s.baseURL+"/") {
		return strings.TrimPrefix(loc, s.baseURL), true
	}
	return "", false
}
