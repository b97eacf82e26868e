// Package bootstrap builds the adapters shared by the command line tools
// from the configured sources.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/adapters/cache"
	"github.com/daunfamily/maritime-vrp/internal/adapters/lpsolver"
	"github.com/daunfamily/maritime-vrp/internal/adapters/repositories"
	"github.com/daunfamily/maritime-vrp/internal/config"
	"github.com/daunfamily/maritime-vrp/internal/platform/db"
	"github.com/daunfamily/maritime-vrp/internal/ports"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

// Deps are the concrete adapters behind the ports. Close releases them.
type Deps struct {
	Repo      ports.ProblemRepository
	Store     ports.ColumnStore
	Solver    ports.LinearSolver
	Workspace *services.Workspace

	closers []func() error
}

// Open connects to the configured backends. Instances come from Postgres
// when DATABASE_URL is set and from the instance directory otherwise.
func Open(ctx context.Context, src config.Sources, solverOpts lpsolver.Options) (_ *Deps, err error) {
	d := &Deps{Solver: lpsolver.New(solverOpts)}
	defer func() {
		if err != nil {
			_ = d.Close()
		}
	}()

	var conn *sql.DB
	if src.DatabaseURL != "" {
		conn, err = db.Open(ctx, src.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		d.closers = append(d.closers, conn.Close)
		d.Repo = repositories.NewPostgresProblemRepository(conn)
		log.Info("instances: postgres")
	} else {
		d.Repo = repositories.NewJSONProblemRepository(src.InstanceDir)
		log.WithField("dir", src.InstanceDir).Info("instances: json directory")
	}

	kind := src.ColumnStore
	if kind == "" {
		switch {
		case src.RedisAddr != "":
			kind = "redis"
		case conn != nil:
			kind = "postgres"
		default:
			kind = "none"
		}
	}

	switch kind {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: src.RedisAddr})
		d.closers = append(d.closers, client.Close)
		if err = client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("bootstrap: ping redis %q: %w", src.RedisAddr, err)
		}
		d.Store = cache.NewRedisColumnStore(client)
	case "postgres":
		if conn == nil {
			return nil, errors.New("bootstrap: postgres column store needs DATABASE_URL")
		}
		d.Store = cache.NewSQLColumnStore(conn)
	}
	log.WithField("store", kind).Info("column store")

	d.Workspace = services.NewWorkspace(d.Repo, d.Store)
	return d, nil
}

// Close releases connections in reverse order of opening.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
