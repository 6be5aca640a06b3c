package routes

import (
	"net/http"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/routes/middlewares"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	root.
		With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Mount("/admin", servePrivateFiles("/admin"))
	root.Mount("/", servePublicFiles())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public: respondents render a form and submit a record
	api.Get(`/forms/{id:^\d+$}`, PublicGetForm(app))
	api.Post(`/forms/{id:^\d+$}/records`, PublicSubmit(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/folders/sort", SortFolders(app))

		// forms of a project
		r.Get(`/projects/{projectID:^\d+$}/forms`, ListForms(app))
		r.Post(`/projects/{projectID:^\d+$}/forms`, CreateForm(app))
		r.Post(`/projects/{projectID:^\d+$}/forms/sort`, SortForms(app))

		r.Get(`/forms/{id:^\d+$}`, GetForm(app))
		r.Put(`/forms/{id:^\d+$}`, RenameForm(app))
		r.Delete(`/forms/{id:^\d+$}`, DeleteForm(app))
		r.Post(`/forms/{id:^\d+$}/pages/sort`, SortPages(app))
		r.Get(`/forms/{id:^\d+$}/records`, GetFormRecords(app))

		// pages and their fields
		r.Post(`/forms/{formID:^\d+$}/pages`, CreatePage(app))
		r.Put(`/pages/{id:^\d+$}`, RenamePage(app))
		r.Delete(`/pages/{id:^\d+$}`, DeletePage(app))
		r.Post(`/pages/{id:^\d+$}/fields/sort`, SortFields(app))

		r.Post(`/pages/{pageID:^\d+$}/fields`, CreateField(app))
		r.Put(`/fields/{id:^\d+$}`, RenameField(app))
		r.Delete(`/fields/{id:^\d+$}`, DeleteField(app))
		r.Post(`/fields/{id:^\d+$}/options/sort`, SortOptions(app))
		r.Delete(`/options/{id:^\d+$}`, DeleteOption(app))

		r.Get("/field-types", ListFieldTypes(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func servePublicFiles() http.Handler {
	return http.FileServer(http.Dir("public"))
}

func servePrivateFiles(path string) http.Handler {
	return http.StripPrefix(path, http.FileServer(http.Dir("private")))
}
