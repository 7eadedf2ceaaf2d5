package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/internal/game"
	"github.com/lao-tseu-is-alive/go-flock-quadtree/pkg/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	watch      bool

	rootCmd = &cobra.Command{
		Use:   "boids",
		Short: "Interactive boids flock backed by a quadtree",
		Long: `Opens a resizable window with a flock of boids. Click to add an agent,
Space pauses, R toggles the interaction radius rings and Escape quits.`,
		Args: cobra.NoArgs,
		RunE: runBoids,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON or YAML configuration file")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", true, "reload the configuration file when it changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBoids(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 1. Configuration
	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	logger := cfg.Logger()

	// 2. Hot reload
	var reload chan *config.Config
	if configPath != "" && watch {
		reload = make(chan *config.Config, 1)
		if err := config.Watch(ctx, configPath, logger, reload); err != nil {
			return err
		}
		logger.Infof("watching %s for changes", configPath)
	}

	// 3. Game
	g, err := game.New(cfg, logger, reload)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			logger.Errorf("closing telemetry: %v", err)
		}
	}()

	ebiten.SetWindowSize(int(cfg.World.Width), int(cfg.World.Height))
	ebiten.SetWindowTitle("Boids: flock with quadtree neighbor search")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return nil
}
