package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/response"
	"github.com/formdeck/formdeck/routes"
	"github.com/formdeck/formdeck/schema"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	app := app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Catalog:      schema.NewCatalog(db),
		Store:        response.NewStore(db),
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
