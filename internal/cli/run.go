package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/holaplex/chainmirror/internal/config"
	"github.com/holaplex/chainmirror/internal/dispatch"
	"github.com/holaplex/chainmirror/internal/feed"
	"github.com/holaplex/chainmirror/internal/pipeline"
	"github.com/holaplex/chainmirror/internal/programs"
	"github.com/holaplex/chainmirror/internal/programs/metadata"
	"github.com/holaplex/chainmirror/internal/programs/syrup"
	"github.com/holaplex/chainmirror/internal/programs/token"
	"github.com/holaplex/chainmirror/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config string
	Replay string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the mirror pipeline",
		Long: `Start the chainmirror ingestion pipeline.

Messages are read as JSON lines, one feed message per line, either from
the file given with --replay or from standard input. The transport
adapter for a live queue feeds the same envelope format.

Example:
  chainmirror run --config ./chainmirror.cue --replay ./captured.jsonl
  geyser-tap | chainmirror run --config ./chainmirror.cue`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to CUE config file (required)")
	cmd.Flags().StringVar(&opts.Replay, "replay", "", "JSONL message file to replay instead of stdin")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"database", cfg.Database,
		"consumers", cfg.Consumers,
		"ignore_on_startup", cfg.IgnoreOnStartup)

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database ready", "path", cfg.Database)

	disp := dispatch.NewDispatcher(st, slog.Default())

	notifier := dispatch.NewOfferNotifier(cfg.NotifyEndpoint, cfg.NotifyTimeout, slog.Default())
	if notifier.Enabled() {
		slog.Info("offer notifications enabled", "endpoint", cfg.NotifyEndpoint)
	} else {
		slog.Info("offer notifications disabled")
	}

	registry, err := programs.NewRegistry(
		metadata.New(disp, slog.Default()),
		syrup.New(slog.Default()),
		token.New(st, disp, slog.Default()),
	)
	if err != nil {
		return fmt.Errorf("build handler registry: %w", err)
	}

	router := pipeline.NewRouter(registry, cfg.Ignore(), slog.Default())
	queue := feed.NewQueue()
	consumer := pipeline.NewConsumer(queue, router, cfg.Consumers, cfg.StorageTimeout, slog.Default())

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	source := cmd.InOrStdin()
	if opts.Replay != "" {
		f, err := os.Open(opts.Replay)
		if err != nil {
			return fmt.Errorf("open replay file: %w", err)
		}
		defer f.Close()
		source = f
	}

	// Feed the queue from the source; the queue closes when the source
	// drains, which ends the consumer once in-flight messages finish.
	go feedQueue(ctx, queue, source)

	if err := consumer.Run(ctx); err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}

	slog.Info("pipeline stopped gracefully")
	return nil
}

// feedQueue enqueues JSONL messages from r until EOF or cancellation.
// Malformed lines are logged and skipped; the feed's redelivery policy
// owns malformed transport payloads, not this process.
func feedQueue(ctx context.Context, queue *feed.Queue, r io.Reader) {
	defer queue.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := feed.UnmarshalMessage(line)
		if err != nil {
			slog.Warn("skipping malformed message", "error", err)
			continue
		}
		if !queue.Enqueue(msg) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Error("message source read failed", "error", err)
	}
}
