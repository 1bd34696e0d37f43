package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/specred/internal/domain"
	"github.com/bft-labs/specred/internal/rank"
)

type fakeReducer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeReducer) Reduce(ctx context.Context, dataRoot, obsID, prefix string) (domain.CalibratedRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := obsID + prefix
	f.calls = append(f.calls, key)
	if err := f.fail[key]; err != nil {
		return domain.CalibratedRecord{}, err
	}
	return domain.CalibratedRecord{ObsID: obsID, Prefix: prefix}, nil
}

type fakeStore struct {
	existing map[string]bool
}

func (s *fakeStore) Write(ctx context.Context, rec domain.CalibratedRecord) error { return nil }
func (s *fakeStore) Read(ctx context.Context, obsID, prefix string) (domain.CalibratedRecord, error) {
	return domain.CalibratedRecord{}, os.ErrNotExist
}
func (s *fakeStore) Exists(obsID, prefix string) bool { return s.existing[obsID+prefix] }

func TestProcessObservation(t *testing.T) {
	root := t.TempDir()
	obsDir := filepath.Join(root, "0123456789")
	if err := os.MkdirAll(obsDir, 0o700); err != nil {
		t.Fatal(err)
	}
	lists := "1S001\n"
	if err := os.WriteFile(filepath.Join(obsDir, rank.MOSListName), []byte(lists), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(obsDir, rank.PNListName), []byte("S003\nS004\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	reducer := &fakeReducer{fail: map[string]error{
		"0123456789pnS004": domain.ErrMissingCalibrationFile,
	}}
	store := &fakeStore{existing: map[string]bool{
		// Already reduced, must be skipped.
		"0123456789mos1S001": true,
	}}

	w := New(root, reducer, store, zerolog.Nop())
	w.processObservation(context.Background(), "0123456789")

	// The reduced exposure is skipped; the failing one does not stop the
	// remaining work.
	want := []string{"0123456789pnS003", "0123456789pnS004"}
	if len(reducer.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", reducer.calls, want)
	}
	for i, c := range want {
		if reducer.calls[i] != c {
			t.Errorf("call %d = %q, want %q", i, reducer.calls[i], c)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	w := New(root, &fakeReducer{}, &fakeStore{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
