package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/sim"
)

var ErrNotFound = errors.New("storage: run not found")

type RunMetadata struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Tracked   []string           `json:"tracked"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Store persists finished runs together with the simulation text that
// produced them.
type Store interface {
	Init() error
	// Save fills in the ID, timestamp, step count, tracked names and
	// metrics of meta from the result and returns the new run ID.
	Save(meta RunMetadata, result *sim.Result, src dsl.Source) (string, error)
	// List returns all runs, newest first.
	List() ([]RunMetadata, error)
	Load(id string) (*RunMetadata, error)
	LoadResult(id string) (*sim.Result, error)
	LoadSource(id string) (dsl.Source, error)
	Close() error
}

// Open returns an initialised store of the given driver rooted at dir.
func Open(driver, dir string) (Store, error) {
	var s Store
	switch driver {
	case "", "file":
		s = NewFileStore(dir)
	case "sqlite":
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		db, err := NewSQLiteStore(filepath.Join(dir, "runs.db"))
		if err != nil {
			return nil, err
		}
		s = db
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", driver)
	}

	if err := s.Init(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newRunID() string {
	return uuid.New().String()[:8]
}

// complete stamps meta with a fresh ID and the facts carried by result.
func complete(meta RunMetadata, result *sim.Result) RunMetadata {
	if meta.ID == "" {
		meta.ID = newRunID()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics
	meta.Tracked = make([]string, len(result.Series))
	for i, s := range result.Series {
		meta.Tracked[i] = s.Name
	}
	return meta
}

func sortNewestFirst(runs []RunMetadata) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
}
