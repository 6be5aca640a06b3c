package routes

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
)

func idParam(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func currentUserID(r *http.Request) (int, bool) {
	claims, ok := r.Context().Value(oauth.ClaimsContext).(map[string]string)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(claims["user_id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// canEdit is the authorization gate for project-scoped operations:
// the user must be a member of the project.
func canEdit(ctx context.Context, db *sql.DB, userID, projectID int) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `
		SELECT 1 FROM user_project
		WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// authorizeProject writes the error response itself and reports
// whether the handler may proceed.
func authorizeProject(w http.ResponseWriter, r *http.Request, app app.App, projectID int) bool {
	userID, ok := currentUserID(r)
	if !ok {
		httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.claims.user_id")
		return false
	}

	ok, err := canEdit(r.Context(), app.DB, userID, projectID)
	if err != nil {
		httpx.LogInternalError(w, "db.can_edit", err)
		return false
	}
	if !ok {
		httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "request.can_edit")
		return false
	}
	return true
}

// The owning-scope resolvers below walk an entity up to its project,
// so handlers can authorize before touching the catalog.

func projectOfForm(ctx context.Context, db *sql.DB, formID int) (int, error) {
	var projectID int
	err := db.QueryRowContext(ctx,
		`SELECT project_id FROM form WHERE id = ?`, formID,
	).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFoundError{Entity: "form", ID: formID}
	}
	return projectID, err
}

func projectOfPage(ctx context.Context, db *sql.DB, pageID int) (int, error) {
	var projectID int
	err := db.QueryRowContext(ctx, `
		SELECT f.project_id FROM page p
		INNER JOIN form f ON (p.form_id = f.id)
		WHERE p.id = ?`,
		pageID,
	).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFoundError{Entity: "page", ID: pageID}
	}
	return projectID, err
}

func projectOfField(ctx context.Context, db *sql.DB, fieldID int) (int, error) {
	var projectID int
	err := db.QueryRowContext(ctx, `
		SELECT f.project_id FROM field fd
		INNER JOIN page p ON (fd.page_id = p.id)
		INNER JOIN form f ON (p.form_id = f.id)
		WHERE fd.id = ?`,
		fieldID,
	).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFoundError{Entity: "field", ID: fieldID}
	}
	return projectID, err
}

func projectOfOption(ctx context.Context, db *sql.DB, optionID int) (int, error) {
	var projectID int
	err := db.QueryRowContext(ctx, `
		SELECT f.project_id FROM field_opt o
		INNER JOIN field fd ON (o.field_id = fd.id)
		INNER JOIN page p ON (fd.page_id = p.id)
		INNER JOIN form f ON (p.form_id = f.id)
		WHERE o.id = ?`,
		optionID,
	).Scan(&projectID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.NotFoundError{Entity: "field_opt", ID: optionID}
	}
	return projectID, err
}
