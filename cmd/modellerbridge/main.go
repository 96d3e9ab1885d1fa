package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/modellerbridge/internal/bridge"
	"github.com/danmuck/modellerbridge/internal/host"
	"github.com/danmuck/modellerbridge/internal/host/local"
	"github.com/danmuck/modellerbridge/internal/logging"
	"github.com/danmuck/modellerbridge/internal/observability"
)

const serviceName = "modellerbridge"

type cliOptions struct {
	Project     string
	Initials    string
	Performance bool
	Channel     string
	Databank    string
	ConfigPath  string
	AdminListen string
	ToolboxRoot string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts cliOptions
	cmd := &cobra.Command{
		Use:   "modellerbridge <project> <user-initials> <performance 0|1> <channel> [databank]",
		Short: "Serve orchestrator tool commands against a modelling project",
		Long: "modellerbridge reads commands from standard input, runs toolbox tools in the " +
			"given project and writes results to the outbound channel.",
		Args:          cobra.RangeArgs(4, 5),
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.fromArgs(args); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, os.Stdin)
		},
	}
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVar(&opts.AdminListen, "admin-listen", "", "admin HTTP listen address (overrides config)")
	cmd.Flags().StringVar(&opts.ToolboxRoot, "toolbox", "", "toolbox directory (overrides config and project)")
	return cmd
}

func (o *cliOptions) fromArgs(args []string) error {
	o.Project = args[0]
	o.Initials = args[1]
	perf, err := strconv.Atoi(strings.TrimSpace(args[2]))
	if err != nil {
		return fmt.Errorf("performance flag must be 0 or 1, got %q", args[2])
	}
	o.Performance = perf != 0
	o.Channel = args[3]
	if len(args) > 4 {
		o.Databank = args[4]
	}
	return nil
}

// run owns the process lifecycle. Only failures that leave nothing to report
// to, such as an unopenable outbound channel, are returned as errors.
func run(ctx context.Context, opts cliOptions, stdin io.ReadCloser) error {
	cfg, err := loadAppConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.AdminListen != "" {
		cfg.AdminListen = opts.AdminListen
	}
	if opts.ToolboxRoot != "" {
		cfg.ToolboxRoot = opts.ToolboxRoot
	}
	cfg.Bridge.PerformanceMode = opts.Performance

	closeLog, err := configureLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	out, err := openChannel(opts.Channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channelPath(opts.Channel)).Msg("modellerbridge.run outbound channel unavailable")
		return fmt.Errorf("open outbound channel: %w", err)
	}
	defer out.Close()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		log.Warn().Err(err).Msg("modellerbridge.run tracing disabled")
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	opener := local.Opener{ToolboxRoot: cfg.ToolboxRoot}
	hostSession, hostErr := opener.Open(ctx, host.OpenOptions{
		Project:      opts.Project,
		UserInitials: opts.Initials,
		Databank:     opts.Databank,
	})

	session := bridge.NewSession(stdin, out, hostSession, cfg.Bridge)
	if hostErr != nil {
		if err := session.ReportStartupError(hostErr); err != nil {
			return err
		}
	}

	adminCtx, stopAdmin := context.WithCancel(ctx)
	defer stopAdmin()
	if cfg.AdminListen != "" {
		admin := observability.NewAdminServer(cfg.AdminListen, session)
		go func() {
			if err := admin.Serve(adminCtx); err != nil {
				log.Error().Err(err).Msg("modellerbridge.run admin server stopped")
			}
		}()
	}

	// a blocked read only ends when stdin closes
	go func() {
		<-ctx.Done()
		_ = stdin.Close()
	}()

	runErr := session.Run(ctx)
	if hostSession != nil {
		if err := hostSession.Close(); err != nil {
			log.Warn().Err(err).Msg("modellerbridge.run host close failed")
		}
	}

	switch {
	case runErr == nil, errors.Is(runErr, bridge.ErrUnknownSignal), errors.Is(runErr, context.Canceled):
		log.Info().Str("session", session.ID()).Msg("modellerbridge.run session ended")
		return nil
	default:
		log.Error().Err(runErr).Str("session", session.ID()).Msg("modellerbridge.run session failed")
		return runErr
	}
}

// configureLogging installs the process logger on stderr or on the
// configured file.
func configureLogging(cfg appConfig) (func(), error) {
	var out io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}
	logging.ConfigureRuntime(out)
	if cfg.LogLevel != "" && !logging.SetLevel(cfg.LogLevel) {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("modellerbridge.configureLogging unknown level ignored")
	}
	return closeFn, nil
}
