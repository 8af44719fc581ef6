// Package main is the entry point for the ttsd daemon CLI.
//
// Usage:
//
//	ttsd [flags]                 run the daemon
//	ttsd cache list|prune        inspect and prune the audio cache
//	ttsd config show|voices      show configuration and available voices
//	ttsd version                 show version information
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ttskit/claude-tts/cmd/ttsd/commands"
	"github.com/ttskit/claude-tts/pkg/daemon"
)

func main() {
	if err := commands.Execute(); err != nil {
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			fmt.Println("TTS daemon is already running")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
