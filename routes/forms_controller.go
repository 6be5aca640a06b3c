package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/render"
)

type nameRequest struct {
	Name string `json:"name"`
}

type sortRequest struct {
	Order []int `json:"order"`
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.project_id")
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		forms, err := app.Catalog.Forms(r.Context(), projectID)
		if err != nil {
			httpx.LogError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.project_id")
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

		form, err := app.Catalog.CreateForm(r.Context(), projectID, body.Name)
		if err != nil {
			httpx.LogError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.get_form.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		form, err := app.Catalog.FormStructure(r.Context(), formID)
		if err != nil {
			httpx.LogError(w, "db.get_form", err)
			return
		}

		render.JSON(w, r, form)
	}
}

func RenameForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.update_form.project", err)
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

		err = app.Catalog.RenameForm(r.Context(), formID, body.Name)
		if err != nil {
			httpx.LogError(w, "db.update_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.delete_form.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		err = app.Catalog.DeleteForm(r.Context(), formID)
		if err != nil {
			httpx.LogError(w, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SortForms applies a drag-and-drop order of the project's forms.
func SortForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := idParam(r, "projectID")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.project_id")
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

		err = app.Catalog.Reorder(r.Context(), schema.ScopeForms, projectID, body.Order)
		if err != nil {
			httpx.LogError(w, "db.sort_forms", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func SortPages(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.sort_pages.project", err)
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

		err = app.Catalog.Reorder(r.Context(), schema.ScopePages, formID, body.Order)
		if err != nil {
			httpx.LogError(w, "db.sort_pages", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
