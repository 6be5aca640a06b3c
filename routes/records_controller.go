package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/go-chi/render"
)

type submitRequest struct {
	SurveyID *int           `json:"survey_id,omitempty"`
	Values   map[int]string `json:"values"`
}

// PublicGetForm serves the form structure respondents render, without
// authentication.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
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

// PublicSubmit opens a record for the form and stores the submitted
// values as one batch. Respondents are anonymous; the record keeps a
// survey reference when the submission came through one.
func PublicSubmit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		var body submitRequest
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		record, err := app.Store.CreateRecord(r.Context(), formID, nil, body.SurveyID)
		if err != nil {
			httpx.LogError(w, "db.insert_record", err)
			return
		}

		err = app.Store.SetValues(r.Context(), record.ID, body.Values)
		if err != nil {
			httpx.LogError(w, "db.insert_record.values", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": record.ID,
		})
	}
}

// GetFormRecords lists a form's records with their values, for display
// and export.
func GetFormRecords(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID, err := idParam(r, "id")
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		projectID, err := projectOfForm(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogError(w, "db.get_records.project", err)
			return
		}
		if !authorizeProject(w, r, app, projectID) {
			return
		}

		records, err := app.Store.Records(r.Context(), formID)
		if err != nil {
			httpx.LogError(w, "db.get_records", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"records": records,
		})
	}
}
