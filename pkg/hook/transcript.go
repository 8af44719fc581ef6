// Package hook implements the Stop-hook client: it pulls the last
// assistant message out of a session transcript and hands it to the
// daemon over the Unix socket.
package hook

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MaxTextLength caps how much text the hook sends to the daemon. The
// daemon applies its own configured limit on top.
const MaxTextLength = 1000

// transcriptEntry is one line of a session transcript (JSONL).
type transcriptEntry struct {
	Type    string `json:"type"`
	Message struct {
		Content []contentBlock `json:"content"`
	} `json:"message"`
}

// contentBlock is either a {"type":"text","text":...} object or a bare
// string, depending on the transcript writer's version.
type contentBlock struct {
	Type string
	Text string
}

func (b *contentBlock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		b.Type = "text"
		b.Text = s
		return nil
	}
	var obj struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	b.Type = obj.Type
	b.Text = obj.Text
	return nil
}

// LastAssistantMessage scans a JSONL transcript and returns the text of
// the most recent assistant message, its content blocks joined with
// spaces. Unparseable lines are skipped; assistant entries with no text
// blocks (tool-only turns) are passed over in favor of earlier ones. An
// empty string means no assistant text was found.
func LastAssistantMessage(transcriptPath string) (string, error) {
	f, err := os.Open(transcriptPath)
	if err != nil {
		return "", fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	var entries []transcriptEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e transcriptEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}

	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Type != "assistant" {
			continue
		}
		var texts []string
		for _, block := range entries[i].Message.Content {
			if block.Type == "text" && block.Text != "" {
				texts = append(texts, block.Text)
			}
		}
		if len(texts) > 0 {
			return strings.Join(texts, " "), nil
		}
	}
	return "", nil
}

// Truncate limits text to MaxTextLength runes.
func Truncate(text string) string {
	r := []rune(text)
	if len(r) <= MaxTextLength {
		return text
	}
	return string(r[:MaxTextLength])
}
