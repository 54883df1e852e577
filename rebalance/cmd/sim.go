package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/datarecording"
	"github.com/sarchlab/rebalance/host/hostsim"
	"github.com/sarchlab/rebalance/lifecycle"
	"github.com/sarchlab/rebalance/monitoring"
	"github.com/sarchlab/rebalance/sim/timing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type simOptions struct {
	configFile string
	dotEnv     string
	watch      bool

	record     bool
	recordFile string

	monitor bool
	port    int
	open    bool

	frames    int
	dt        float64
	bundleDir string
	platform  string
}

func newSimCommand(global *globalOptions) *cobra.Command {
	opts := &simOptions{}

	c := &cobra.Command{
		Use:   "sim",
		Short: "Run a scripted play session against the in-memory host.",
		Long: `Run a scripted play session against the in-memory host: boot, ` +
			`title, enter the game, equip the crest, heavy attacks, a silk ` +
			`drop, a bind, a configuration change, a crest swap, a scene ` +
			`change and the return to the title. A JSON summary is printed ` +
			`at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSim(cmd, opts, global)
		},
	}

	flags := c.Flags()
	flags.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	flags.StringVar(&opts.dotEnv, "dotenv", "", ".env file with REBALANCE_ overrides")
	flags.BoolVar(&opts.watch, "watch", false, "reload the configuration file when it changes")
	flags.BoolVar(&opts.record, "record", false, "record lifecycle events into SQLite")
	flags.StringVar(&opts.recordFile, "record-file", "",
		"recording file name without extension, default is a unique name")
	flags.BoolVar(&opts.monitor, "monitor", false, "serve the control API")
	flags.IntVar(&opts.port, "port", 0, "control API port, 0 picks a free one")
	flags.BoolVar(&opts.open, "open", false, "open the control page in a browser")
	flags.IntVar(&opts.frames, "frames", 0,
		"idle frames after the script; with --monitor, 0 runs until interrupted")
	flags.Float64Var(&opts.dt, "dt", 0.02, "seconds per frame")
	flags.StringVar(&opts.bundleDir, "bundles", "",
		"load bundle manifests from this directory instead of mounting them")
	flags.StringVar(&opts.platform, "platform", runtime.GOOS, "OS reported by the host")

	return c
}

func runSim(cmd *cobra.Command, opts *simOptions, global *globalOptions) error {
	log := global.logger()

	if opts.dt <= 0 {
		return fmt.Errorf("--dt must be positive, got %v", opts.dt)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := config.Sources{File: opts.configFile, DotEnv: opts.dotEnv}

	cfg, err := config.Load(src)
	if err != nil {
		return err
	}

	sim := buildHost(opts)
	engine := timing.NewEngine(log)

	if global.dev {
		engine.AcceptHook(timing.NewTaskLogger(log))
	}

	coord := lifecycle.MakeBuilder().
		WithHost(sim).
		WithConfigStore(config.NewStore(cfg, opts.configFile)).
		WithEngine(engine).
		WithLogger(log).
		Build()

	r := newRunner(sim, coord, opts.dt, log)

	if opts.record {
		finish := startRecording(opts, coord, engine)
		defer finish()
	}

	if opts.watch {
		closeWatcher, err := startWatcher(ctx, src, coord, engine, log)
		if err != nil {
			return err
		}
		defer closeWatcher()
	}

	if opts.monitor {
		shutdown, err := startMonitor(opts, coord, engine, r, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	coord.Start()

	err = r.play(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if err == nil && (opts.frames > 0 || opts.monitor) {
		if err := r.idle(ctx, opts.frames, opts.monitor); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(r.summary)
}

func buildHost(opts *simOptions) *hostsim.Sim {
	b := hostsim.MakeBuilder().WithPlatform(opts.platform)

	if opts.bundleDir != "" {
		return b.WithContentRoot(opts.bundleDir).Build()
	}

	sim := b.Build()
	sim.MountStandardBundles()

	return sim
}

func startRecording(
	opts *simOptions,
	coord *lifecycle.Coordinator,
	engine *timing.Engine,
) func() {
	writer := datarecording.New(opts.recordFile)

	exec := datarecording.NewExecRecorder(writer)
	exec.Start()
	exec.Note("Config", opts.configFile)
	exec.Note("Platform", opts.platform)

	coord.AcceptHook(datarecording.NewTracer(writer, func() float64 {
		return float64(engine.Now())
	}))

	return func() {
		exec.End()
		_ = writer.Close()
	}
}

func startWatcher(
	ctx context.Context,
	src config.Sources,
	coord *lifecycle.Coordinator,
	engine *timing.Engine,
	log *zap.Logger,
) (func(), error) {
	w, err := config.NewWatcher(src, func(cfg config.Config) {
		engine.Post(func() { coord.ApplyConfig(cfg) })
	}, log)
	if err != nil {
		return nil, err
	}

	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	return func() { _ = w.Close() }, nil
}

func startMonitor(
	opts *simOptions,
	coord *lifecycle.Coordinator,
	engine *timing.Engine,
	r *runner,
	log *zap.Logger,
) (func(), error) {
	m := monitoring.NewMonitor(coord, engine, log).WithPortNumber(opts.port)
	m.RegisterComponent("coordinator", coord)
	m.RegisterComponent("cache", coord.Cache())
	m.RegisterComponent("pool", coord.Pool())
	m.RegisterComponent("tracker", coord.Tracker())
	m.RegisterComponent("engine", engine)

	bar := m.CreateProgressBar("frames", uint64(opts.frames))
	r.onFrame = func() { bar.IncrementFinished(1) }

	url, err := m.StartServer()
	if err != nil {
		return nil, err
	}

	if opts.open {
		if err := browser.OpenURL(url); err != nil {
			log.Warn("cannot open browser", zap.Error(err))
		}
	}

	return func() {
		m.CompleteProgressBar(bar)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		_ = m.Shutdown(ctx)
	}, nil
}
