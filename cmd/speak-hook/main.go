// Package main is the Stop-hook client. An editor invokes it with hook
// metadata on stdin; it extracts the last assistant message from the
// session transcript and sends it to the TTS daemon.
//
// Usage in ~/.claude/settings.json:
//
//	{
//	  "hooks": {
//	    "Stop": [{
//	      "hooks": [{"type": "command", "command": "speak-hook", "timeout": 15}]
//	    }]
//	  }
//	}
//
// The hook always exits 0: a dead daemon or a broken transcript must
// never fail the editor's stop path.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ttskit/claude-tts/pkg/hook"
	"github.com/ttskit/claude-tts/pkg/tts"
)

func main() {
	paths, err := tts.NewPaths()
	if err != nil {
		fmt.Fprintf(os.Stderr, "home dir: %v\n", err)
		return
	}
	socket := paths.Socket()

	var input struct {
		TranscriptPath string `json:"transcript_path"`
	}
	if err := json.NewDecoder(os.Stdin).Decode(&input); err != nil {
		fmt.Fprintf(os.Stderr, "hook input: %v\n", err)
		return
	}

	if input.TranscriptPath == "" || !fileExists(input.TranscriptPath) {
		send(socket, "Done")
		return
	}

	text, err := hook.LastAssistantMessage(input.TranscriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transcript: %v\n", err)
		text = ""
	}
	if text == "" {
		send(socket, "Ready")
		return
	}
	send(socket, hook.Truncate(text))
}

func send(socket, text string) {
	if err := hook.Send(socket, text); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
