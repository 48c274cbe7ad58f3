package api

import (
	"net/http"

	"github.com/rhm-kanzlei/mailroom/internal/config"
	"github.com/rhm-kanzlei/mailroom/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Intake.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Documents.Handler().Routes(),
		domain.Rules.Handler().Routes(),
		domain.Register.Handler().Routes(),
		newStorageHandler(
			runtime.Storage,
			runtime.Logger,
			cfg.Storage.MaxListSize,
		).routes(),
	)
}
