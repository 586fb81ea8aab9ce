package rest

import (
	"net/http"

	"github.com/milanv/jobhub/internal/orchestrator/service"
	"github.com/milanv/jobhub/internal/shared/config"
	"github.com/milanv/jobhub/internal/shared/logging"
)

// NewServer assembles the REST server over the service layer.
func NewServer(cfg config.RESTConfig, svc *service.Service, adminToken string, logger logging.Logger) *http.Server {
	api := NewAPI(svc, adminToken, logger)
	mux := http.NewServeMux()
	api.RegisterRoutes(mux)

	handler := ChainMiddleware(
		mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger),
	)

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
