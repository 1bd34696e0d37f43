// Package watch reduces exposures as they arrive. It monitors the data root
// for new observation directories and exposure-list files and runs the
// reduction pipeline for every listed exposure that has no committed record
// yet. Per-exposure failures are logged and skipped; they never stop the
// watcher.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/bft-labs/specred/internal/domain"
	"github.com/bft-labs/specred/internal/ports"
	"github.com/bft-labs/specred/internal/rank"
)

var obsIDPattern = regexp.MustCompile(`^[0-9]{10}$`)

// Reducer reduces one exposure end-to-end. Implemented by reduce.Pipeline.
type Reducer interface {
	Reduce(ctx context.Context, dataRoot, obsID, prefix string) (domain.CalibratedRecord, error)
}

// Watcher drives the reducer from file-system events on the data root.
type Watcher struct {
	root    string
	reducer Reducer
	store   ports.RecordStore
	log     zerolog.Logger

	debounceDelay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher over the data root.
func New(root string, reducer Reducer, store ports.RecordStore, log zerolog.Logger) *Watcher {
	return &Watcher{
		root:          root,
		reducer:       reducer,
		store:         store,
		log:           log,
		debounceDelay: 500 * time.Millisecond,
		pending:       make(map[string]*time.Timer),
	}
}

// Run watches until the context is canceled. Existing observation
// directories are swept once at startup so exposures that arrived while the
// watcher was down are not lost.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && obsIDPattern.MatchString(e.Name()) {
			if err := fw.Add(filepath.Join(w.root, e.Name())); err != nil {
				w.log.Warn().Err(err).Str("obs_id", e.Name()).Msg("cannot watch observation directory")
			}
			w.processObservation(ctx, e.Name())
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	name := filepath.Base(event.Name)
	parent := filepath.Base(filepath.Dir(event.Name))

	switch {
	case filepath.Dir(event.Name) == filepath.Clean(w.root) && obsIDPattern.MatchString(name):
		if err := fw.Add(event.Name); err != nil {
			w.log.Warn().Err(err).Str("obs_id", name).Msg("cannot watch observation directory")
			return
		}
		w.schedule(ctx, name)

	case (name == rank.MOSListName || name == rank.PNListName) && obsIDPattern.MatchString(parent):
		w.schedule(ctx, parent)
	}
}

// schedule debounces processing per observation: list files are appended
// line by line, so wait for the writes to settle.
func (w *Watcher) schedule(ctx context.Context, obsID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[obsID]; ok {
		t.Stop()
	}
	w.pending[obsID] = time.AfterFunc(w.debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, obsID)
		w.mu.Unlock()
		w.processObservation(ctx, obsID)
	})
}

func (w *Watcher) processObservation(ctx context.Context, obsID string) {
	obsDir := filepath.Join(w.root, obsID)

	var prefixes []string
	for _, frag := range rank.ReadList(filepath.Join(obsDir, rank.MOSListName)) {
		prefixes = append(prefixes, "mos"+frag)
	}
	for _, frag := range rank.ReadList(filepath.Join(obsDir, rank.PNListName)) {
		prefixes = append(prefixes, "pn"+frag)
	}

	for _, prefix := range prefixes {
		if ctx.Err() != nil {
			return
		}
		if w.store.Exists(obsID, prefix) {
			continue
		}
		if _, err := w.reducer.Reduce(ctx, w.root, obsID, prefix); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.log.Error().Err(err).Str("obs_id", obsID).Str("prefix", prefix).Msg("reduction failed")
			continue
		}
	}
}
