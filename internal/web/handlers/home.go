package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pysugar/meli-eco-nexus/internal/auth/token"
	"github.com/pysugar/meli-eco-nexus/internal/marketplace"
	"github.com/pysugar/meli-eco-nexus/internal/session"
)

// HomeHandler reports service status and whether the caller's session
// holds credentials.
func HomeHandler(store session.Store, siteID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authenticated := false
		userID := ""
		sessionID := session.FromContext(r.Context())
		if sessionID != "" {
			rec, err := store.Get(r.Context(), sessionID)
			if err == nil {
				authenticated = true
				userID = rec.UserID
			} else if !errors.Is(err, session.ErrNoSession) {
				log.Printf("⚠️ Failed to load session %s: %v", shortID(sessionID), err)
			}
		}

		resp := map[string]interface{}{
			"service":       "meli-eco-nexus",
			"site":          siteID,
			"sites":         marketplace.SiteIDs(),
			"authenticated": authenticated,
			"login":         "/login",
			"products":      "/products",
		}
		if userID != "" {
			resp["user_id"] = userID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// LogoutHandler destroys the session's credentials.
func LogoutHandler(store session.Store, mgr *token.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := session.FromContext(r.Context())
		if sessionID != "" {
			if err := store.Delete(r.Context(), sessionID); err != nil {
				log.Printf("⚠️ Failed to delete session %s: %v", shortID(sessionID), err)
				writeError(w, http.StatusInternalServerError, "internal_error", "Failed to log out")
				return
			}
			mgr.Forget(sessionID)
			log.Printf("👋 Session %s logged out", shortID(sessionID))
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
