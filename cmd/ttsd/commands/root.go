// Package commands implements the ttsd command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ttskit/claude-tts/pkg/daemon"
	"github.com/ttskit/claude-tts/pkg/tts"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "ttsd",
	Short: "Local text-to-speech daemon for coding sessions",
	Long: `ttsd keeps a warm Gemini Live session and speaks text it receives
over a Unix socket. Synthesized audio is cached as WAV files, so repeated
messages replay instantly and offline.

Runtime files live under ~/.claude:
  tts.sock         request socket
  tts_config.json  voice, style, mode, language, max_chars
  tts_cache/       synthesized audio
  tts_daemon.log   daemon log

GEMINI_API_KEY must be set.

Examples:
  ttsd &
  echo -n "All done." | socat - UNIX-CONNECT:$HOME/.claude/tts.sock
  ttsd cache list
  ttsd cache prune --max-size 100`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level and mirror the log to stderr")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	paths, err := tts.NewPaths()
	if err != nil {
		return err
	}
	if err := paths.EnsureBaseDir(); err != nil {
		return err
	}

	logger, closeLog, err := newLogger(paths.LogFile(), debug)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("signal received, shutting down")
		cancel()
	}()

	d, err := daemon.New(ctx, logger)
	if err != nil {
		return err
	}

	fmt.Printf("Starting TTS daemon (socket=%s)\n", paths.Socket())
	return d.Run(ctx)
}

// newLogger writes to the daemon log file, and in debug mode mirrors
// everything to stderr.
func newLogger(path string, debug bool) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	var w io.Writer = f
	level := slog.LevelInfo
	if debug {
		w = io.MultiWriter(f, os.Stderr)
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}
