package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/config"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/flock"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/log"
)

type options struct {
	configPath string
	ticks      int
	dt         float64
	agents     int
	out        string
	every      int
}

var (
	opts options

	rootCmd = &cobra.Command{
		Use:   "flockbench",
		Short: "Run the flock headless and report ticks per second",
		Long: `Runs a flock without a window for a fixed number of ticks, optionally
writing flock statistics as CSV, and prints the measured tick rate.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(opts, cmd.OutOrStdout())
		},
	}
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "JSON or YAML configuration file")
	f.IntVarP(&opts.ticks, "ticks", "n", 600, "number of ticks to simulate")
	f.Float64Var(&opts.dt, "dt", 1.0/60, "seconds per tick")
	f.IntVar(&opts.agents, "agents", 0, "initial agents, overrides the configuration when > 0")
	f.StringVarP(&opts.out, "out", "o", "", "telemetry CSV path, overrides the configuration")
	f.IntVar(&opts.every, "every", 0, "ticks between telemetry rows, overrides the configuration when > 0")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer) error {
	if o.ticks <= 0 || o.dt <= 0 {
		return fmt.Errorf("ticks and dt must be positive, got %d and %g", o.ticks, o.dt)
	}

	// 1. Configuration
	cfg := config.DefaultConfig()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if o.agents > 0 {
		cfg.Flock.InitialCount = o.agents
	}
	if o.out != "" {
		cfg.Telemetry.Path = o.out
	}
	if o.every > 0 {
		cfg.Telemetry.Every = o.every
	}
	logger := cfg.Logger()

	// 2. Flock
	f, err := newFlock(cfg, logger)
	if err != nil {
		return err
	}

	// 3. Output
	csv, err := telemetry.CreateCSV(cfg.Telemetry.Path)
	if err != nil {
		return err
	}
	defer csv.Close()

	// 4. Run
	start := time.Now()
	var simulated time.Duration
	for tick := 1; tick <= o.ticks; tick++ {
		t0 := time.Now()
		f.Tick(o.dt)
		simulated += time.Since(t0)

		if cfg.Telemetry.Every > 0 && tick%cfg.Telemetry.Every == 0 {
			if err := csv.Write(telemetry.Collect(tick, float64(tick)*o.dt, f.All())); err != nil {
				return err
			}
		}
	}
	wall := time.Since(start)

	tps := float64(o.ticks) / simulated.Seconds()
	fmt.Fprintf(stdout, "agents: %d\nticks: %d\nsimulation: %s (%.1f ticks/s)\nwall: %s\n",
		f.Len(), o.ticks, simulated.Round(time.Microsecond), tps, wall.Round(time.Microsecond))
	return csv.Close()
}

// newFlock lays the agents out on a grid covering the whole world.
func newFlock(cfg *config.Config, logger log.Logger) (*flock.Flock, error) {
	w, h := cfg.World.Width, cfg.World.Height
	boids := make([]flock.Boid, cfg.Flock.InitialCount)
	cols := max(1, int(math.Ceil(math.Sqrt(float64(len(boids))*w/h))))
	rows := (len(boids) + cols - 1) / cols
	for i := range boids {
		col, row := i%cols, i/cols
		pos := geometry.Vector2D{
			X: w * (float64(col) + 0.5) / float64(cols),
			Y: h * (float64(row) + 0.5) / float64(rows),
		}
		boids[i] = flock.NewBoid(pos, i, cfg.Boid)
	}
	return flock.New(geometry.RectFromSize(w, h), boids,
		flock.WithLogger(logger),
		flock.WithParams(cfg.Boid),
		flock.WithCapacity(cfg.Index.Capacity),
	)
}
