package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/config"
	"github.com/akmonengine/plume/internal/tui"
	"github.com/akmonengine/plume/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	verbose bool

	steps      int
	dt         float64
	integrator string
	backtracks int
	noPlot     bool

	worlds  int
	workers int

	outFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plume",
		Short:         "2d rigid body simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [preset|scene.yaml]",
		Short: "run a scene headless and print a summary",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noPlot, "no-plot", false, "skip the energy chart")

	liveCmd := &cobra.Command{
		Use:   "live [preset|scene.yaml]",
		Short: "run a scene with live terminal rendering",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [preset|scene.yaml]",
		Short: "step independent copies of a scene in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  runBench,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&worlds, "worlds", 8, "number of worlds")
	benchCmd.Flags().IntVar(&workers, "workers", 4, "number of workers")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the default world configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outFile != "" {
				return config.Save(outFile, config.DefaultConfig())
			}
			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	configCmd.Flags().StringVarP(&outFile, "out", "o", "", "write to file instead of stdout")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(scene.Presets()))
			for _, name := range scene.Presets() {
				s, err := scene.Preset(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, fmt.Sprintf("%d", len(s.Bodies)), s.Description})
			}
			fmt.Print(tui.Table([]string{"NAME", "BODIES", "DESCRIPTION"}, rows))
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [preset] [scene.yaml]",
		Short: "write a built-in scene to a yaml file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := scene.Preset(args[0])
			if err != nil {
				return err
			}
			return scene.Save(args[1], s)
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, configCmd, presetsCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (default from scene)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator override (euler, leapfrog)")
	cmd.Flags().IntVar(&backtracks, "max-backtracks", 0, "backtracking retries override")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadScene resolves a preset name first, then a file path, and applies flag overrides
func loadScene(cmd *cobra.Command, arg string) (*scene.Scene, error) {
	s, err := scene.Preset(arg)
	if err != nil {
		if _, statErr := os.Stat(arg); statErr != nil {
			return nil, err
		}
		if s, err = scene.Load(arg); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("steps") {
		s.Steps = steps
	}
	if cmd.Flags().Changed("dt") {
		s.Config.Timestep = dt
	}
	if cmd.Flags().Changed("integrator") {
		s.Config.Integrator = integrator
	}
	if cmd.Flags().Changed("max-backtracks") {
		s.Config.MaxBacktracks = backtracks
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	s, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	world, _, err := s.Build(plume.WithLogger(logger))
	if err != nil {
		return err
	}

	collisions := 0
	world.Events.Subscribe(plume.COLLISION_ENTER, func(plume.Event) { collisions++ })

	n := s.StepCount()
	energy := make([]float64, 0, n+1)
	energy = append(energy, world.Energy())
	stats := tui.RunStats{EnergyStart: world.Energy(), EnergyEnd: world.Energy()}

	start := time.Now()
	for i := 0; i < n; i++ {
		world.Step()
		stats.Record(world)
		energy = append(energy, stats.EnergyEnd)
	}
	stats.Elapsed = time.Since(start)

	logger.Info("run finished",
		zap.String("scene", s.Name),
		zap.Int("steps", stats.Steps),
		zap.Int("collisions", collisions),
		zap.Duration("elapsed", stats.Elapsed),
	)

	fmt.Println(tui.Summary(s.Name, world, stats))
	fmt.Printf("collisions: %d\n", collisions)

	if !noPlot {
		fmt.Println()
		fmt.Println(tui.EnergyChart(tui.Downsample(energy, 80), 80, 10, "total energy vs step"))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}

	// the live view owns the terminal, so the world logs nowhere
	return tui.Run(s.Name, func() (*plume.World, error) {
		world, _, err := s.Build()
		return world, err
	})
}

func runBench(cmd *cobra.Command, args []string) error {
	s, err := loadScene(cmd, args[0])
	if err != nil {
		return err
	}
	if worlds < 1 {
		return fmt.Errorf("--worlds must be positive, got %d", worlds)
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	batch := make([]*plume.World, worlds)
	for i := range batch {
		if batch[i], _, err = s.Build(plume.WithLogger(logger)); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	n := s.StepCount()
	start := time.Now()
	results, err := plume.RunEnsemble(ctx, batch, n, workers)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("benchmarking %s: %d worlds x %d steps, %d workers\n\n", s.Name, worlds, n, workers)

	rows := make([][]string, len(results))
	total := 0
	for i, r := range results {
		total += r.Steps
		rows[i] = []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.4fs", r.Time),
			fmt.Sprintf("%d", r.Steps),
			fmt.Sprintf("%d", r.Backtracks),
			fmt.Sprintf("%d", r.Fallbacks),
			fmt.Sprintf("%+.3f%%", 100*r.Drift()),
		}
	}
	fmt.Print(tui.Table([]string{"WORLD", "TIME", "STEPS", "BACKTRACKS", "FALLBACKS", "DRIFT"}, rows))
	fmt.Printf("\n%d steps in %v (%.0f steps/sec)\n", total, elapsed, float64(total)/elapsed.Seconds())

	return nil
}
