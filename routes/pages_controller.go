package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/render"
)

func CreatePage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "formID")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.form_id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.insert_page.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		var body nameRequest
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		page, err := app.Catalog.CreatePage(r.Context(), formID, body.Name)
		if err != nil {
			httpx.LogError(w, "db.insert_page", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, page)
	}
}

func RenamePage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfPage(r.Context(), app.DB, pageID)
		if err != nil {
			httpx.LogError(w, "db.update_page.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		var body nameRequest
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Catalog.RenamePage(r.Context(), pageID, body.Name)
		if err != nil {
			httpx.LogError(w, "db.update_page", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeletePage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfPage(r.Context(), app.DB, pageID)
		if err != nil {
			httpx.LogError(w, "db.delete_page.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		err = app.Catalog.DeletePage(r.Context(), pageID)
		if err != nil {
			httpx.LogError(w, "db.delete_page", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func SortFields(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfPage(r.Context(), app.DB, pageID)
		if err != nil {
			httpx.LogError(w, "db.sort_fields.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		var body sortRequest
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.Catalog.Reorder(r.Context(), schema.ScopeFields, pageID, body.Order)
		if err != nil {
			httpx.LogError(w, "db.sort_fields", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
