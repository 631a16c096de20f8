package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/windowpane-rc/core/internal/config"
	"github.com/windowpane-rc/core/internal/ipc"
	"github.com/windowpane-rc/core/internal/logging"
	"github.com/windowpane-rc/core/internal/session"
	"github.com/windowpane-rc/core/internal/telemetry"
)

var (
	version      = "0.1.0"
	cfgFile      string
	texturesPath string
	sentryDSN    string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "windowpane-core",
	Short: "Windowpane screen-sharing core engine",
	Long:  `windowpane-core captures the desktop, publishes it over WebRTC, and replays remote input, driven by a shell process over a local IPC channel.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the core engine and wait for the shell to connect",
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCore())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("windowpane-core v%s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: core.yaml in the platform config directory, then the working directory)")
	runCmd.Flags().StringVar(&texturesPath, "textures-path", "", "directory containing overlay marker/badge textures")
	runCmd.Flags().StringVar(&sentryDSN, "sentry-dsn", "", "Sentry DSN for crash reporting")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func initLogging(cfg *config.Config) {
	var output io.Writer = os.Stdout
	logFileFallback := false

	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
			logFileFallback = true
		} else {
			output = logging.TeeWriter(os.Stdout, rw)
		}
	}

	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	log = logging.L("main")

	if logFileFallback {
		log.Warn("log file fallback active, logging to stdout only", "requestedFile", cfg.LogFile)
	}
}

// runCore loads configuration, opens the local IPC listener, accepts
// exactly one shell connection, and runs the orchestrator event loop
// until the shell disconnects or a terminate event arrives. Exit codes
// follow the engine's contract with the shell: 0 is a clean shutdown, 1
// is an IPC or fatal-session failure, 2 is a startup/config failure or a
// capture pipeline that exhausted its restart budget (the orchestrator
// calls os.Exit(2) directly from its event loop in that case, rather
// than unwinding back to this return).
func runCore() int {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 2
	}
	cfg.ApplyFlags(texturesPath, sentryDSN)

	initLogging(cfg)

	if err := telemetry.Init(cfg.SentryDSN, version); err != nil {
		log.Warn("telemetry init failed, continuing without crash reporting", "error", err)
	}
	defer telemetry.Flush(2 * time.Second)

	log.Info("starting core engine", "version", version, "pid", os.Getpid())

	listener, err := ipc.Listen(cfg.SocketName)
	if err != nil {
		log.Error("failed to open ipc listener", "error", err)
		return 2
	}
	defer listener.Close()

	log.Info("waiting for shell connection")
	netConn, err := listener.Accept()
	if err != nil {
		log.Error("ipc accept failed", "error", err)
		return 1
	}
	conn := ipc.NewConn(netConn)
	defer conn.Close()

	adapter := newAdapter()
	orch := session.New(adapter, conn, cfg.TexturesPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("signal received, shutting down")
		cancel()
	}()

	if err := orch.Run(ctx); err != nil && err != context.Canceled {
		log.Error("orchestrator exited with error", "error", err)
		return 1
	}

	log.Info("core engine stopped")
	return 0
}
