package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/response"
	"github.com/formdeck/formdeck/routes"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app       app.App
	projectID int
	userID    int
}

func setup(t *testing.T) testApp {
	t.Helper()

	db, err := database.Open(config.Config{
		DBUrl: filepath.Join(t.TempDir(), "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var userID int
	err = db.QueryRow(`
		INSERT INTO user (username, password_hash) VALUES ('admin', 'x')
		RETURNING id`).Scan(&userID)
	require.NoError(t, err)

	var projectID int
	err = db.QueryRow(`INSERT INTO project (name) VALUES ('test') RETURNING id`).
		Scan(&projectID)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO user_project (user_id, project_id) VALUES (?, ?)`,
		userID, projectID)
	require.NoError(t, err)

	return testApp{
		app: app.App{
			DB:      db,
			Catalog: schema.NewCatalog(db),
			Store:   response.NewStore(db),
		},
		projectID: projectID,
		userID:    userID,
	}
}

// router wires the handlers under test with authentication stubbed to
// the fixture user's claims.
func (ta testApp) router() http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), oauth.ClaimsContext, map[string]string{
				"roles":   "admin",
				"user_id": "1",
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})

	r.Post(`/projects/{projectID:^\d+$}/forms`, routes.CreateForm(ta.app))
	r.Post(`/projects/{projectID:^\d+$}/forms/sort`, routes.SortForms(ta.app))
	r.Get(`/admin/forms/{id:^\d+$}`, routes.GetForm(ta.app))
	r.Get(`/forms/{id:^\d+$}`, routes.PublicGetForm(ta.app))
	r.Post(`/forms/{id:^\d+$}/records`, routes.PublicSubmit(ta.app))
	return r
}

func (ta testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("content-type", "application/json")
	w := httptest.NewRecorder()
	ta.router().ServeHTTP(w, req)
	return w
}

func TestCreateFormEndpoint(t *testing.T) {
	ta := setup(t)

	w := ta.do(t, "POST", "/projects/1/forms", `{"name":"Intake"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = ta.do(t, "POST", "/projects/1/forms", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ta.do(t, "POST", "/projects/999/forms", `{"name":"Intake"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSortFormsEndpoint(t *testing.T) {
	ta := setup(t)
	ctx := context.Background()

	a, err := ta.app.Catalog.CreateForm(ctx, ta.projectID, "a")
	require.NoError(t, err)
	b, err := ta.app.Catalog.CreateForm(ctx, ta.projectID, "b")
	require.NoError(t, err)

	w := ta.do(t, "POST", "/projects/1/forms/sort", `{"order":[2,1]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	forms, err := ta.app.Catalog.Forms(ctx, ta.projectID)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, b.ID, forms[0].ID)
	assert.Equal(t, a.ID, forms[1].ID)
}

func TestPublicSubmitEndpoint(t *testing.T) {
	ta := setup(t)
	ctx := context.Background()

	form, err := ta.app.Catalog.CreateForm(ctx, ta.projectID, "Intake")
	require.NoError(t, err)
	page, err := ta.app.Catalog.CreatePage(ctx, form.ID, "Basics")
	require.NoError(t, err)
	field, err := ta.app.Catalog.CreateField(ctx, page.ID, model.TypeText, "Notes", nil)
	require.NoError(t, err)

	w := ta.do(t, "POST", "/forms/1/records", `{"values":{"1":"hello"}}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	records, err := ta.app.Store.Records(ctx, form.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, map[int]string{field.ID: "hello"}, records[0].Values)

	w = ta.do(t, "GET", "/forms/1", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = ta.do(t, "GET", "/forms/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
