package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/rxnsim/internal/dsl"
	"github.com/san-kum/rxnsim/internal/export"
	"github.com/san-kum/rxnsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	seriesFile     = "series.csv"
	simulationFile = "simulation.sim"
)

// FileStore keeps one directory per run under baseDir.
type FileStore struct {
	baseDir string
}

func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Save(meta RunMetadata, result *sim.Result, src dsl.Source) (string, error) {
	meta = complete(meta, result)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := export.ExportCSV(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := dsl.SaveFile(filepath.Join(runDir, simulationFile), src); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func (s *FileStore) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sortNewestFirst(runs)
	return runs, nil
}

func (s *FileStore) Load(id string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		return nil, notFound(id, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return &meta, nil
}

func (s *FileStore) LoadResult(id string) (*sim.Result, error) {
	meta, err := s.Load(id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, id, seriesFile))
	if err != nil {
		return nil, notFound(id, err)
	}
	defer f.Close()

	result, err := export.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	result.StepsTaken = meta.Steps
	for k, v := range meta.Metrics {
		result.Metrics[k] = v
	}
	return result, nil
}

func (s *FileStore) LoadSource(id string) (dsl.Source, error) {
	src, err := dsl.LoadFile(filepath.Join(s.baseDir, id, simulationFile))
	if err != nil {
		return dsl.Source{}, notFound(id, err)
	}
	return src, nil
}

func notFound(id string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}
