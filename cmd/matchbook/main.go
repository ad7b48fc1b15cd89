package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/uhyunpark/matchbook/params"
	"github.com/uhyunpark/matchbook/pkg/engine"
	"github.com/uhyunpark/matchbook/pkg/orderbook"
	"github.com/uhyunpark/matchbook/pkg/util"
	"github.com/uhyunpark/matchbook/pkg/wire"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "matchbook",
		Usage: "match limit orders read as text lines from stdin or a file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "path to a .env file (default: ./.env)"},
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "read commands from `FILE` instead of stdin"},
			&cli.StringFlag{Name: "log-file", Usage: "also write JSON logs to `FILE`"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
			&cli.BoolFlag{Name: "verify", Usage: "check book invariants after every command"},
			&cli.IntFlag{Name: "queue-size", Usage: "engine inbox capacity"},
			&cli.DurationFlag{Name: "stats-interval", Usage: "period of progress logs, 0 disables"},
		},
		Action: action,
	}
}

func action(c *cli.Context) error {
	cfg := configFrom(c)

	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.File, cfg.Log.Verbose)
	} else {
		logger, err = util.NewLogger(cfg.Log.Verbose)
	}
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	in := io.Reader(os.Stdin)
	if path := c.String("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, cfg, in, os.Stdout, sugar)
}

// configFrom layers command-line flags over the env/.env configuration.
func configFrom(c *cli.Context) params.Config {
	cfg := params.LoadFromEnv(c.String("env"))
	if c.IsSet("log-file") {
		cfg.Log.File = c.String("log-file")
	}
	if c.IsSet("verbose") {
		cfg.Log.Verbose = c.Bool("verbose")
	}
	if c.IsSet("verify") {
		cfg.Engine.Verify = c.Bool("verify")
	}
	if c.IsSet("queue-size") && c.Int("queue-size") > 0 {
		cfg.Engine.QueueSize = c.Int("queue-size")
	}
	if c.IsSet("stats-interval") {
		cfg.Engine.StatsInterval = c.Duration("stats-interval")
	}
	return cfg
}

// run starts the engine, pumps in through it to out and shuts the engine
// down once the input is exhausted.
func run(ctx context.Context, cfg params.Config, in io.Reader, out io.Writer, sugar *zap.SugaredLogger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng := engine.New(orderbook.New(), engine.Config{
		QueueSize:     cfg.Engine.QueueSize,
		StatsInterval: cfg.Engine.StatsInterval,
		Verify:        cfg.Engine.Verify,
	})
	eng.Logger = sugar

	errc := make(chan error, 1)
	go func() { errc <- eng.Run(ctx) }()

	start := time.Now()
	st, err := wire.Pump(ctx, in, out, eng, sugar)
	interrupted := ctx.Err() != nil
	sugar.Infow("input_done",
		"lines", st.Lines,
		"commands", st.Commands,
		"malformed", st.Malformed,
		"trades", st.Trades,
		"elapsed_ms", time.Since(start).Milliseconds())

	cancel()
	<-errc
	if err != nil && !interrupted {
		return err
	}
	return nil
}
