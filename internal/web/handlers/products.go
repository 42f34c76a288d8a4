package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/pysugar/meli-eco-nexus/internal/auth/meli"
	"github.com/pysugar/meli-eco-nexus/internal/auth/token"
	"github.com/pysugar/meli-eco-nexus/internal/marketplace"
	"github.com/pysugar/meli-eco-nexus/internal/session"
)

const pageSize = 10

// ProductsHandler serves the protected product search: it ensures the
// session has a valid access token (refreshing when needed) and queries
// the marketplace with it.
func ProductsHandler(mgr *token.Manager, search *marketplace.Client, siteID, defaultQuery string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.FromContext(r.Context())

		accessToken, err := mgr.EnsureValidToken(r.Context(), sessionID)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrNotAuthenticated), errors.Is(err, token.ErrReauthRequired):
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "You need to be logged in to view products",
					"login": "/login",
				})
			case errors.Is(err, meli.ErrCredentialsMissing):
				writeError(w, http.StatusServiceUnavailable, "configuration_error", err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", "Failed to validate session")
			}
			return
		}

		query := r.URL.Query().Get("q")
		if query == "" {
			query = defaultQuery
		}
		sortBy := r.URL.Query().Get("sort")
		if sortBy == "" {
			sortBy = marketplace.DefaultSort
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		result, err := search.Search(r.Context(), siteID, accessToken, query, marketplace.SearchOptions{
			Sort:   sortBy,
			Offset: (page - 1) * pageSize,
			Limit:  pageSize,
		})
		if err != nil {
			var uerr *marketplace.UpstreamError
			switch {
			case errors.Is(err, marketplace.ErrInvalidQuery):
				writeError(w, http.StatusBadRequest, "invalid_request_error", "Search query cannot be empty")
			case errors.As(err, &uerr):
				writeError(w, http.StatusBadGateway, "upstream_error", uerr.Error())
			case errors.Is(err, marketplace.ErrMalformedResponse):
				writeError(w, http.StatusBadGateway, "upstream_error", "Unexpected response from marketplace")
			default:
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		pages := (result.Paging.Total + pageSize - 1) / pageSize
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"query":    query,
			"sort":     sortBy,
			"page":     page,
			"pages":    pages,
			"total":    result.Paging.Total,
			"products": result.Products,
		})
	}
}
