package main

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/api"
	"github.com/daunfamily/maritime-vrp/internal/config"
	"github.com/daunfamily/maritime-vrp/internal/platform/bootstrap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres or JSON files, Redis, gonum) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	if err := config.SetupLogging(config.Get("LOG_LEVEL", "info"), config.Get("LOG_FORMAT", "text")); err != nil {
		log.Fatal(err)
	}

	port := config.Get("PORT", "8080")

	engine, err := config.LoadEngine()
	if err != nil {
		log.Fatal(err)
	}
	src, err := config.LoadSources()
	if err != nil {
		log.Fatal(err)
	}

	deps, err := bootstrap.Open(context.Background(), src, engine.Solver)
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Close()

	router := api.NewRouter(deps.Workspace, deps.Solver, engine.Params)

	// Solves may run up to the column generation time limit.
	log.WithField("addr", ":"+port).Info("Server listening")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      engine.Params.TimeLimit + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
