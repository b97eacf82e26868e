package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/daunfamily/maritime-vrp/internal/api/dto"
	"github.com/daunfamily/maritime-vrp/internal/config"
	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/bootstrap"
	"github.com/daunfamily/maritime-vrp/internal/services"
)

// SysInfo stamps a report with the machine it was produced on.
type SysInfo struct {
	Platform string `json:"platform"`
	CPU      string `json:"cpu"`
	RAM      string `json:"ram"`
}

type runReport struct {
	dto.SolveResponse
	System SysInfo `json:"system"`
}

func main() {
	config.LoadDotEnv()

	app := cli.NewApp()
	app.Name = "cgsolve"
	app.Usage = "run column generation on one node of a maritime routing instance"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "instance, i", Usage: "instance name"},
		cli.StringFlag{Name: "instances-dir", EnvVar: "INSTANCE_DIR", Value: "data/instances", Usage: "directory of instance JSON files"},
		cli.StringSliceFlag{Name: "eq", Usage: "equality row PORT/TYPE, repeatable"},
		cli.StringSliceFlag{Name: "exclude", Usage: "excluded arc PORT/TYPE>PORT/TYPE, repeatable"},
		cli.IntFlag{Name: "max-rounds", Usage: "override CG_MAX_ROUNDS"},
		cli.DurationFlag{Name: "time-limit", Usage: "override CG_TIME_LIMIT"},
		cli.IntFlag{Name: "threads", Usage: "override SOLVER_THREADS"},
		cli.BoolFlag{Name: "lp-only", Usage: "skip the integer solve"},
		cli.StringFlag{Name: "output, o", Usage: "write the report here instead of stdout"},
		cli.StringFlag{Name: "log-level", EnvVar: "LOG_LEVEL", Value: "info"},
		cli.StringFlag{Name: "log-format", EnvVar: "LOG_FORMAT", Value: "text"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if err := config.SetupLogging(c.String("log-level"), c.String("log-format")); err != nil {
		return err
	}

	instance := strings.TrimSpace(c.String("instance"))
	if instance == "" {
		return cli.NewExitError("--instance is required", 2)
	}

	engine, err := config.LoadEngine()
	if err != nil {
		return err
	}
	if c.IsSet("max-rounds") {
		engine.Params.MaxRounds = c.Int("max-rounds")
	}
	if c.IsSet("time-limit") {
		engine.Params.TimeLimit = c.Duration("time-limit")
	}
	if c.IsSet("threads") {
		engine.Solver.Threads = c.Int("threads")
	}
	if c.Bool("lp-only") {
		engine.Params.SolveInteger = false
	}

	req := services.SolveRequest{Instance: instance, Params: engine.Params}
	for _, s := range c.StringSlice("eq") {
		ref, err := parseRow(s)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("--eq %q: %v", s, err), 2)
		}
		req.EqualityRows = append(req.EqualityRows, ref)
	}
	for _, s := range c.StringSlice("exclude") {
		ex, err := parseArc(s)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("--exclude %q: %v", s, err), 2)
		}
		req.ExcludedArcs = append(req.ExcludedArcs, ex)
	}

	src, err := config.LoadSources()
	if err != nil {
		return err
	}
	src.InstanceDir = c.String("instances-dir")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	deps, err := bootstrap.Open(ctx, src, engine.Solver)
	if err != nil {
		return err
	}
	defer deps.Close()

	rep, err := services.SolveInstance(ctx, req, deps.Workspace, deps.Solver, nil)
	if err != nil {
		return err
	}

	out := runReport{SolveResponse: dto.NewSolveResponse(rep), System: sysInfo()}
	return writeReport(c.String("output"), out)
}

func writeReport(path string, v any) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func sysInfo() SysInfo {
	var s SysInfo
	if h, err := host.Info(); err == nil {
		s.Platform = h.Platform
	}
	if c, err := cpu.Info(); err == nil && len(c) > 0 {
		s.CPU = c[0].ModelName
	}
	if m, err := mem.VirtualMemory(); err == nil {
		s.RAM = fmt.Sprintf("%d GB", m.Total/1024/1024/1024)
	}
	return s
}

// parseRow reads PORT/TYPE, e.g. "Gdansk/pu".
func parseRow(s string) (services.RowRef, error) {
	i := strings.LastIndex(s, "/")
	if i <= 0 || i == len(s)-1 {
		return services.RowRef{}, fmt.Errorf("want PORT/TYPE")
	}
	typ, err := domain.ParsePickupType(s[i+1:])
	if err != nil {
		return services.RowRef{}, err
	}
	return services.RowRef{Port: strings.TrimSpace(s[:i]), Type: typ}, nil
}

// parseArc reads FROM>TO where both ends are rows.
func parseArc(s string) (services.ArcExclusion, error) {
	from, to, ok := strings.Cut(s, ">")
	if !ok {
		return services.ArcExclusion{}, fmt.Errorf("want PORT/TYPE>PORT/TYPE")
	}
	f, err := parseRow(strings.TrimSpace(from))
	if err != nil {
		return services.ArcExclusion{}, err
	}
	t, err := parseRow(strings.TrimSpace(to))
	if err != nil {
		return services.ArcExclusion{}, err
	}
	return services.ArcExclusion{From: f, To: t}, nil
}
