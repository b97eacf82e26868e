// Package config reads settings from the environment. A .env file in the
// working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/adapters/lpsolver"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

// LoadDotEnv loads .env into the environment without overriding variables
// that are already set.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found (using environment variables)")
	}
}

func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}

// GetDuration accepts Go durations ("90s") and plain seconds ("90").
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

// Engine holds everything needed to run column generation.
type Engine struct {
	Solver lpsolver.Options
	Params services.Params
}

// LoadEngine reads the engine settings, starting from the defaults.
func LoadEngine() (Engine, error) {
	e := Engine{Solver: lpsolver.DefaultOptions(), Params: services.DefaultParams()}
	p := &e.Params
	pp := &p.Pricing
	sched := &pp.Schedule

	var err error
	ints := []struct {
		key string
		dst *int
	}{
		{"SOLVER_THREADS", &e.Solver.Threads},
		{"MIP_NODE_LIMIT", &e.Solver.NodeLimit},
		{"CG_MAX_ROUNDS", &p.MaxRounds},
		{"PRICING_MAX_COLUMNS", &pp.MaxColumns},
		{"PRICING_HEURISTIC_ITERATIONS", &pp.HeuristicIterations},
	}
	for _, f := range ints {
		if *f.dst, err = GetInt(f.key, *f.dst); err != nil {
			return Engine{}, err
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"SOLVER_TOLERANCE", &e.Solver.Tolerance},
		{"ELEM_PCT_START", &sched.Start},
		{"ELEM_PCT_INCREMENT", &sched.Increment},
		{"ELEM_PCT_END_RELAXED", &sched.EndRelaxed},
		{"ELEM_PCT_END", &sched.End},
	}
	for _, f := range floats {
		if *f.dst, err = GetFloat(f.key, *f.dst); err != nil {
			return Engine{}, err
		}
	}

	if p.TimeLimit, err = GetDuration("CG_TIME_LIMIT", p.TimeLimit); err != nil {
		return Engine{}, err
	}
	if pp.ExactTimeLimit, err = GetDuration("PRICING_EXACT_TIME_LIMIT", pp.ExactTimeLimit); err != nil {
		return Engine{}, err
	}
	if p.SolveInteger, err = GetBool("CG_SOLVE_INTEGER", p.SolveInteger); err != nil {
		return Engine{}, err
	}
	if err := sched.Validate(); err != nil {
		return Engine{}, fmt.Errorf("config: %w", err)
	}
	return e, nil
}

// SetupLogging configures the standard logrus logger. format is "text" or
// "json".
func SetupLogging(level, format string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	log.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("config: unknown log format %q", format)
	}
	return nil
}

// Sources names where instances come from and where columns are kept.
type Sources struct {
	DatabaseURL string
	RedisAddr   string
	InstanceDir string
	// ColumnStore is "redis", "postgres", "none" or empty for the first
	// backend that is configured.
	ColumnStore string
}

func LoadSources() (Sources, error) {
	s := Sources{
		DatabaseURL: Get("DATABASE_URL", ""),
		RedisAddr:   Get("REDIS_ADDR", ""),
		InstanceDir: Get("INSTANCE_DIR", "data/instances"),
		ColumnStore: strings.ToLower(Get("COLUMN_STORE", "")),
	}
	switch s.ColumnStore {
	case "", "none":
	case "redis":
		if s.RedisAddr == "" {
			return Sources{}, fmt.Errorf("config: COLUMN_STORE=redis needs REDIS_ADDR")
		}
	case "postgres":
		if s.DatabaseURL == "" {
			return Sources{}, fmt.Errorf("config: COLUMN_STORE=postgres needs DATABASE_URL")
		}
	default:
		return Sources{}, fmt.Errorf("config: unknown COLUMN_STORE %q", s.ColumnStore)
	}
	return s, nil
}
