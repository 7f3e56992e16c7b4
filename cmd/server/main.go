package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"scenario-analysis/web/internal/analysis"
	"scenario-analysis/web/internal/api"
	"scenario-analysis/web/internal/config"
	"scenario-analysis/web/internal/logging"
)

func main() {
	cfg, err := config.Load(os.Getenv("SCENARIO_CONFIG"))
	if err != nil {
		logrus.Fatalf("load configuration: %v", err)
	}

	closer, err := logging.Setup(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		logrus.Fatalf("configure logging: %v", err)
	}
	defer closer.Close()

	server, err := api.NewServer(api.Config{
		Analysis: analysis.Config{
			Endpoint: cfg.Analysis.Endpoint,
			Timeout:  cfg.Analysis.Timeout,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	logrus.Infof("starting scenario analysis front end on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
