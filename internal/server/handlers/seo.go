package handlers

import (
	"net/http"

	"github.com/GAkim/promo-gateway/internal/gatekeeper"
	"github.com/GAkim/promo-gateway/internal/seo"
)

// SEOHandler serves the hreflang/canonical metadata the frontend renders
// into page heads.
type SEOHandler struct {
	Site *seo.Site
}

// Meta handles GET /api/seo/meta?path=&locale=.
func (h *SEOHandler) Meta(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		respondError(w, r, &gatekeeper.ValidationError{Field: "path", Message: "path query parameter is required"})
		return
	}

	locale := r.URL.Query().Get("locale")
	detected, neutral := h.Site.SplitLocale(path)
	if locale == "" {
		locale = detected
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"canonical":  h.Site.Canonical(neutral, locale),
		"alternates": h.Site.Alternates(neutral),
	})
}
