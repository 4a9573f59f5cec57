package server

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/daccred/warupay/config"
	"github.com/daccred/warupay/controllers"
	"github.com/daccred/warupay/handlers"
	"github.com/daccred/warupay/ledger"
)

type Server struct {
	Port string
}

func (s *Server) Run(runner interface{ Run(addr ...string) error }) error {
	port := s.Port
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = "8080"
	}
	return runner.Run(":" + port)
}

// Init wires the ledger client, the asset service and the HTTP router from
// the loaded configuration and serves until the process exits.
func Init() {
	v := config.GetConfig()
	logger := logrus.WithField("service", "warupay")

	cfg, err := config.ServiceConfig(v)
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	client := ledger.NewHorizon(v.GetString("stellar.horizon_url"), logger.WithField("component", "horizon"))
	svc, err := handlers.NewService(cfg, client, logger)
	if err != nil {
		logger.Fatalf("Failed to create asset service: %v", err)
	}
	logger.Infof("Serving %s on %s via %s", svc.AssetInfo().Code, cfg.NetworkKind, v.GetString("stellar.horizon_url"))

	r := NewRouter(controllers.NewOperationsController(svc), v.GetStringSlice("server.allow_origins"))
	s := &Server{Port: v.GetString("server.port")}
	if err := s.Run(r); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
