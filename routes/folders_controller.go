package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/render"
)

// SortFolders reorders the authenticated user's own folders; the scope
// comes from the token, never from the request.
func SortFolders(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUserID(r)
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.claims.user_id")
			return
		}

		var body sortRequest
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Catalog.Reorder(r.Context(), schema.ScopeFolders, userID, body.Order)
		if err != nil {
			httpx.LogError(w, "db.sort_folders", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
