package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/render"
)

type fieldRequest struct {
	Type    model.FieldType `json:"type"`
	Name    string          `json:"name"`
	Options []string        `json:"options"`
}

func CreateField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageID, err := idParam(r, "pageID")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.page_id")
			return
		}

		projectID, err := projectOfPage(r.Context(), app.DB, pageID)
		if err != nil {
			httpx.LogError(w, "db.insert_field.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		var body fieldRequest
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		field, err := app.Catalog.CreateField(r.Context(), pageID, body.Type, body.Name, body.Options)
		if err != nil {
			httpx.LogError(w, "db.insert_field", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, field)
	}
}

func RenameField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfField(r.Context(), app.DB, fieldID)
		if err != nil {
			httpx.LogError(w, "db.update_field.project", err)
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

		err = app.Catalog.RenameField(r.Context(), fieldID, body.Name)
		if err != nil {
			httpx.LogError(w, "db.update_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteField(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfField(r.Context(), app.DB, fieldID)
		if err != nil {
			httpx.LogError(w, "db.delete_field.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		err = app.Catalog.DeleteField(r.Context(), fieldID)
		if err != nil {
			httpx.LogError(w, "db.delete_field", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteOption(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		optionID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfOption(r.Context(), app.DB, optionID)
		if err != nil {
			httpx.LogError(w, "db.delete_option.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		err = app.Catalog.DeleteOption(r.Context(), optionID)
		if err != nil {
			httpx.LogError(w, "db.delete_option", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func SortOptions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fieldID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfField(r.Context(), app.DB, fieldID)
		if err != nil {
			httpx.LogError(w, "db.sort_options.project", err)
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

		err = app.Catalog.Reorder(r.Context(), schema.ScopeOptions, fieldID, body.Order)
		if err != nil {
			httpx.LogError(w, "db.sort_options", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListFieldTypes(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types := []map[string]any{}
		for _, t := range model.FieldTypes() {
			types = append(types, map[string]any{
				"id":       int(t),
				"name":     t.String(),
				"has_opts": t.RequiresOptions(),
			})
		}
		render.JSON(w, r, map[string]any{
			"field_types": types,
		})
	}
}
