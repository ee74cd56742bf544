package rest

import (
	"net/http"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Dictionary *DictionaryHandler
	Library    *LibraryHandler
	Moderation *ModerationHandler
	Import     *ImportHandler
	Analytics  *AnalyticsHandler
	Health     *HealthHandler
}

// NewRouter mounts all REST routes. Authentication and authorization are
// enforced inside the services; the router only shapes the URL space.
func NewRouter(h Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /api/auth/sign-up", h.Auth.SignUp)
	mux.HandleFunc("POST /api/auth/sign-in", h.Auth.SignIn)

	// Public dictionary
	mux.HandleFunc("GET /api/public/v1/dictionary/search", h.Dictionary.Search)
	mux.HandleFunc("GET /api/public/v1/dictionary/entry/{id}", h.Dictionary.Entry)
	mux.HandleFunc("GET /api/public/v1/dictionary/lemma/{lemma}", h.Dictionary.EntryByLemma)
	mux.HandleFunc("GET /api/public/v1/dictionary/autocomplete", h.Dictionary.Autocomplete)

	// Library (authenticated)
	mux.HandleFunc("GET /api/library/search", h.Library.Search)
	mux.HandleFunc("GET /api/library/items/{id}", h.Library.Item)
	mux.HandleFunc("POST /api/library/submit", h.Library.Submit)
	mux.HandleFunc("POST /api/library/track", h.Library.Track)

	// Moderation (moderators)
	mux.HandleFunc("GET /api/admin/submissions/pending", h.Moderation.ListPending)
	mux.HandleFunc("POST /api/admin/submissions/{id}/approve", h.Moderation.Approve)
	mux.HandleFunc("POST /api/admin/submissions/{id}/reject", h.Moderation.Reject)
	mux.HandleFunc("DELETE /api/admin/library/items/{id}", h.Moderation.RemoveItem)

	// Imports (staff)
	mux.HandleFunc("POST /api/admin/import/dictionary/csv", h.Import.DictionaryCSV)
	mux.HandleFunc("POST /api/admin/import/dictionary/json", h.Import.DictionaryJSON)
	mux.HandleFunc("POST /api/admin/import/library/json", h.Import.LibraryJSON)
	mux.HandleFunc("GET /api/admin/import/jobs/{id}", h.Import.Job)

	// Analytics (staff/managers)
	mux.HandleFunc("GET /api/admin/query-health/summary", h.Analytics.QueryHealth)
	mux.HandleFunc("GET /api/admin/analytics/library/overview", h.Analytics.LibraryOverview)
	mux.HandleFunc("GET /api/admin/analytics/dictionary/overview", h.Analytics.DictionaryOverview)

	// Health
	mux.HandleFunc("GET /healthz", h.Health.Live)
	mux.HandleFunc("GET /readyz", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	return mux
}
