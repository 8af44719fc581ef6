package tts

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/genai"
)

// collectSink records fed chunks without playing anything.
type collectSink struct {
	chunks   [][]byte
	finished bool
}

func (s *collectSink) Feed(chunk []byte) { s.chunks = append(s.chunks, chunk) }
func (s *collectSink) Finish()           { s.finished = true }
func (s *collectSink) WaitDone() error   { return nil }

func audioMsg(chunks ...[]byte) *genai.LiveServerMessage {
	parts := make([]*genai.Part, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "audio/pcm;rate=24000", Data: c},
		})
	}
	return &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{
			ModelTurn: &genai.Content{Parts: parts},
		},
	}
}

func turnCompleteMsg() *genai.LiveServerMessage {
	return &genai.LiveServerMessage{
		ServerContent: &genai.LiveServerContent{TurnComplete: true},
	}
}

func TestSynthesizeStreamsAndCollects(t *testing.T) {
	live := &fakeLive{messages: []*genai.LiveServerMessage{
		audioMsg([]byte{1, 2}),
		audioMsg([]byte{3, 4}, []byte{5, 6}),
		{}, // keepalive without server content
		turnCompleteMsg(),
	}}
	sink := &collectSink{}

	audio, err := Synthesize(live, "hello world", sink, discardLogger())
	if err != nil {
		t.Fatalf("Synthesize error: %v", err)
	}
	if !bytes.Equal(audio, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("audio = %v", audio)
	}
	if len(sink.chunks) != 3 {
		t.Errorf("sink got %d chunks, want 3", len(sink.chunks))
	}
	if len(live.sent) != 1 || live.sent[0] != "hello world" {
		t.Errorf("sent = %v, want one user turn", live.sent)
	}
	if len(live.turnCompletes) != 1 || live.turnCompletes[0] == nil || !*live.turnCompletes[0] {
		t.Errorf("turnCompletes = %v, want the turn explicitly closed", live.turnCompletes)
	}
	if sink.finished {
		t.Error("Synthesize must not finalize the sink")
	}
	if len(live.messages) != 0 {
		t.Error("did not stop at turn completion")
	}
}

func TestSynthesizeStopsAtTurnComplete(t *testing.T) {
	live := &fakeLive{messages: []*genai.LiveServerMessage{
		audioMsg([]byte{1}),
		turnCompleteMsg(),
		audioMsg([]byte{9}), // next turn's audio must not be consumed
	}}

	audio, err := Synthesize(live, "hi", &collectSink{}, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(audio, []byte{1}) {
		t.Errorf("audio = %v, want just the first turn", audio)
	}
	if len(live.messages) != 1 {
		t.Error("consumed past turn completion")
	}
}

func TestSynthesizeSendError(t *testing.T) {
	sendErr := errors.New("connection reset")
	live := &fakeLive{sendErr: sendErr}

	if _, err := Synthesize(live, "hi", &collectSink{}, discardLogger()); !errors.Is(err, sendErr) {
		t.Errorf("err = %v, want %v", err, sendErr)
	}
}

func TestSynthesizeReceiveError(t *testing.T) {
	recvErr := errors.New("stream broken")
	live := &fakeLive{
		messages: []*genai.LiveServerMessage{audioMsg([]byte{1})},
		recvErr:  recvErr,
	}
	sink := &collectSink{}

	if _, err := Synthesize(live, "hi", sink, discardLogger()); !errors.Is(err, recvErr) {
		t.Errorf("err = %v, want %v", err, recvErr)
	}
	if len(sink.chunks) != 1 {
		t.Error("chunks before the error should still have been streamed")
	}
}

func TestSynthesizeNoAudio(t *testing.T) {
	live := &fakeLive{messages: []*genai.LiveServerMessage{turnCompleteMsg()}}

	if _, err := Synthesize(live, "hi", &collectSink{}, discardLogger()); !errors.Is(err, ErrNoAudio) {
		t.Errorf("err = %v, want ErrNoAudio", err)
	}
}
