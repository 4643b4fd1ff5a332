package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nstoeckigt/lftp-mirror/internal/cloud"
	"github.com/nstoeckigt/lftp-mirror/internal/config"
	"github.com/nstoeckigt/lftp-mirror/internal/mirror"
	"github.com/nstoeckigt/lftp-mirror/internal/notify"
	"github.com/nstoeckigt/lftp-mirror/internal/report"
	"github.com/nstoeckigt/lftp-mirror/internal/store"
)

const (
	progName = "lftpmirror"
	progVer  = "0.17.0"

	// Reference URLs shown in every log header.
	projectURL = "https://joedicastro.com\nhttps://cloud.stephanradom.de"
)

var (
	// Global flags
	cfgPath   string
	logLevel  string
	logFormat string
	traceFlag bool

	globalCfg *config.Config
	logger    *slog.Logger

	// Global components
	globalStore *store.Store
	lftpPath    string
)

// exitCodeError carries a transfer tool exit status through cobra.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("transfer finished with exit status %d", e.code)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   progName,
		Short: "Mirror a remote FTP directory into a local directory or vice versa through the lftp program",
		Long: `lftpmirror mirrors a remote FTP/SFTP directory with a local directory (or
vice versa) and optionally stores a daily compressed copy of the local dir.
The transfer itself is delegated to the lftp program.

It can run in three ways: interactively from the command line (shell),
as a programmed task with parameters taken from the configuration file
(cron), or importing multiple mirror operations from a sectioned config
file (cfg). All three modes share one option grammar and one execution
path, so they can never diverge in behavior.`,
		Example: `  lftpmirror shell ftp.example.com /pub ./mirror -a --compress
  lftpmirror shell ftp.example.com /pub ./mirror -l user password -s -e
  lftpmirror cron
  lftpmirror cron --daemon
  lftpmirror cfg sites.cfg
  lftpmirror history --limit 10`,
		Version:       progVer,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()

			if shouldSkipSetup(cmd.Name()) {
				return nil
			}

			if cfgPath == "" {
				found, err := config.FindConfigFile()
				if err != nil {
					logger.Debug("config file not found, using defaults")
				} else {
					cfgPath = found
				}
			}

			if cfgPath != "" {
				var err error
				globalCfg, err = config.Load(cfgPath)
				if err != nil {
					return &mirror.ConfigError{Reason: err.Error()}
				}
			} else {
				globalCfg = config.DefaultConfig()
			}
			if globalCfg.WorkDir == "" {
				globalCfg.WorkDir = "."
			}

			logger.Debug("config loaded", "path", cfgPath, "work_dir", globalCfg.WorkDir)

			// The external tool must exist before any run starts; the
			// history command only reads the store and is exempt.
			if cmd.Name() != "history" {
				path, err := exec.LookPath(globalCfg.LftpBinary)
				if err != nil {
					return &mirror.PrereqError{Program: globalCfg.LftpBinary, Err: err}
				}
				lftpPath = path
			}

			if globalCfg.DBPath != "" {
				st, err := store.New(globalCfg.DBPath, logger)
				if err != nil {
					// Run history is best-effort, never a reason to refuse a mirror.
					logger.Warn("run history store unavailable", "error", err)
				} else {
					globalStore = st
				}
			}

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeStore()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (auto-discovered if not specified)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text or json)")
	cmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "enable verbose internal tracing")

	cmd.AddCommand(
		newShellCmd(),
		newCronCmd(),
		newCfgCmd(),
		newHistoryCmd(),
	)

	return cmd
}

// setupLogging initializes the slog logger based on flags
func setupLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if traceFlag {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	if strings.ToLower(logFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// shouldSkipSetup checks if a command needs no config or components
func shouldSkipSetup(cmdName string) bool {
	skip := map[string]bool{
		"help":       true,
		"version":    true,
		"completion": true,
	}
	return skip[cmdName]
}

// closeStore closes the global store connection
func closeStore() {
	if globalStore != nil {
		if err := globalStore.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}
}

// runRecorder adapts the store to the orchestrator's recorder interface.
type runRecorder struct {
	st *store.Store
}

func (r *runRecorder) RecordRun(rec *mirror.RunRecord) error {
	return r.st.CreateMirrorRun(&store.MirrorRun{
		UUID:       rec.UUID,
		Mode:       rec.Mode,
		Site:       rec.Site,
		Remote:     rec.Remote,
		Local:      rec.Local,
		Direction:  rec.Direction,
		ExitCode:   rec.ExitCode,
		BytesTotal: rec.BytesTotal,
		FileCount:  rec.FileCount,
		Archive:    rec.Archive,
		Status:     rec.Status,
		ErrorMsg:   rec.ErrorMsg,
		StartTime:  rec.StartTime,
		EndTime:    rec.EndTime,
	})
}

// newOrchestrator assembles a mirror orchestrator from the global
// configuration and components.
func newOrchestrator() *mirror.Orchestrator {
	rep := report.New(progName, progVer)
	if globalCfg.WorkDir != "." {
		rep.Filename = filepath.Join(globalCfg.WorkDir, progName+".log")
	}

	var notifier notify.Notifier = notify.Disabled{}
	if globalCfg.Notifications && notify.Available() {
		notifier = notify.NewDesktop(logger)
	}

	orch := &mirror.Orchestrator{
		WorkDir:  globalCfg.WorkDir,
		URL:      projectURL,
		Report:   rep,
		Runner:   mirror.NewRunner(lftpPath, logger),
		Notifier: notifier,
		Reindexer: cloud.New(
			globalCfg.Cloud.DataRoot,
			globalCfg.Cloud.ServiceUser,
			globalCfg.Cloud.FallbackUser,
			logger,
		),
		Logger: logger,
	}
	if globalStore != nil {
		orch.Recorder = &runRecorder{st: globalStore}
	}
	return orch
}
