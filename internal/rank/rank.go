// Package rank aggregates reduced exposure records across many
// observations: every exposure named by an observation's exposure-list files
// either has a committed record (ranked by exposure time) or is reported as
// missing. Record presence is a reliable success signal because record
// writes are atomic.
package rank

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bft-labs/specred/internal/ports"
)

// Exposure-list file names written by the exposures command inside each
// observation directory.
const (
	MOSListName = "mos_exposures.txt"
	PNListName  = "pn_exposures.txt"
)

var obsIDPattern = regexp.MustCompile(`^[0-9]{10}$`)

// Ranked is one successfully reduced exposure.
type Ranked struct {
	// ObsDetPref is the concatenated observation id and prefix, the key
	// used by downstream blank-sky aggregation.
	ObsDetPref string `json:"obsdetpref"`

	ObsID  string `json:"obs_id"`
	Prefix string `json:"prefix"`

	// Exposure is the exposure time in seconds, the ranking key.
	Exposure float64 `json:"exp"`
}

// Scanner walks the data root and classifies every listed exposure.
type Scanner struct {
	root  string
	store ports.RecordStore
	log   zerolog.Logger
}

// NewScanner creates a scanner over the data root.
func NewScanner(root string, store ports.RecordStore, log zerolog.Logger) *Scanner {
	return &Scanner{root: root, store: store, log: log}
}

// Scan returns the reduced exposures ranked by descending exposure time and
// the obsdetprefs whose expected record is absent. Results are explicit
// values; nothing is written as a side effect.
func (s *Scanner) Scan(ctx context.Context) (ranked []Ranked, missing []string, err error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil, err
	}

	for _, e := range entries {
		if !e.IsDir() || !obsIDPattern.MatchString(e.Name()) {
			continue
		}
		obsID := e.Name()
		obsDir := filepath.Join(s.root, obsID)

		var prefixes []string
		for _, frag := range ReadList(filepath.Join(obsDir, MOSListName)) {
			prefixes = append(prefixes, "mos"+frag)
		}
		for _, frag := range ReadList(filepath.Join(obsDir, PNListName)) {
			prefixes = append(prefixes, "pn"+frag)
		}

		for _, prefix := range prefixes {
			obsdetpref := obsID + prefix
			if !s.store.Exists(obsID, prefix) {
				missing = append(missing, obsdetpref)
				continue
			}
			rec, err := s.store.Read(ctx, obsID, prefix)
			if err != nil {
				s.log.Warn().Err(err).Str("obsdetpref", obsdetpref).Msg("unreadable record counted as missing")
				missing = append(missing, obsdetpref)
				continue
			}
			ranked = append(ranked, Ranked{
				ObsDetPref: obsdetpref,
				ObsID:      obsID,
				Prefix:     prefix,
				Exposure:   rec.Exposure,
			})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Exposure != ranked[j].Exposure {
			return ranked[i].Exposure > ranked[j].Exposure
		}
		return ranked[i].ObsDetPref < ranked[j].ObsDetPref
	})
	return ranked, missing, nil
}

// ReadList reads one exposure-list file: one fragment per line, upper-cased.
// A missing file means the observation has no exposures for that detector.
func ReadList(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var frags []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.ToUpper(strings.TrimSpace(sc.Text()))
		if line != "" {
			frags = append(frags, line)
		}
	}
	return frags
}

// WriteResults persists the scan outcome in dir: ranked_observations.json
// with the ranked list, bad_obsdetprefs.txt with one missing obsdetpref per
// line. Both files are written atomically.
func WriteResults(dir string, ranked []Ranked, missing []string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(ranked, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWrite(filepath.Join(dir, "ranked_observations.json"), data); err != nil {
		return err
	}

	var sb strings.Builder
	for _, m := range missing {
		sb.WriteString(m)
		sb.WriteByte('\n')
	}
	return atomicWrite(filepath.Join(dir, "bad_obsdetprefs.txt"), []byte(sb.String()))
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
