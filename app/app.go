package app

import (
	"database/sql"

	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/response"
	"github.com/formdeck/formdeck/schema"
	"github.com/go-chi/oauth"
)

type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config

	Catalog *schema.Catalog
	Store   *response.Store
}
