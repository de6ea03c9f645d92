package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/iliyamo/cinema-ticket-assistant/internal/dialogue"
)

// scriptedEngine replays canned turn results in order.
type scriptedEngine struct {
	replies [][]string
	errs    []error
	turns   int
}

func (s *scriptedEngine) Turn(ctx context.Context, st *dialogue.State, userText string) ([]string, error) {
	i := s.turns
	s.turns++
	var reps []string
	var err error
	if i < len(s.replies) {
		reps = s.replies[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reps, err
}

func TestRunLoopEndsSessionOnTurnError(t *testing.T) {
	eng := &scriptedEngine{
		replies: [][]string{{"Halo!"}, nil, {"tidak terbaca"}},
		errs:    []error{nil, errors.New("db gone"), nil},
	}
	in := strings.NewReader("halo\npesan tiket\nlanjut lagi\n")
	var out strings.Builder

	runLoop(context.Background(), in, &out, eng, zap.NewNop())

	if eng.turns != 2 {
		t.Fatalf("turns = %d, want 2 (loop must stop on the failing turn)", eng.turns)
	}
	got := out.String()
	if !strings.Contains(got, "Sesi dihentikan.") {
		t.Fatalf("output missing session end notice:\n%s", got)
	}
	if strings.Contains(got, "tidak terbaca") {
		t.Fatalf("loop kept running after the error:\n%s", got)
	}
}

func TestRunLoopExitCommand(t *testing.T) {
	eng := &scriptedEngine{}
	in := strings.NewReader("exit\n")
	var out strings.Builder

	runLoop(context.Background(), in, &out, eng, zap.NewNop())

	if eng.turns != 0 {
		t.Fatalf("turns = %d, want 0", eng.turns)
	}
	if !strings.Contains(out.String(), "Sampai jumpa!") {
		t.Fatalf("output missing farewell:\n%s", out.String())
	}
}

func TestRunLoopSkipsBlankInput(t *testing.T) {
	eng := &scriptedEngine{replies: [][]string{{"Halo!"}}}
	in := strings.NewReader("   \nhalo\n")
	var out strings.Builder

	runLoop(context.Background(), in, &out, eng, zap.NewNop())

	if eng.turns != 1 {
		t.Fatalf("turns = %d, want 1 (blank line must not reach the engine)", eng.turns)
	}
	if !strings.Contains(out.String(), "Agen: Halo!") {
		t.Fatalf("output missing reply:\n%s", out.String())
	}
}
