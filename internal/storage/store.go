package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/convlab/internal/analysis"
	"github.com/san-kum/convlab/internal/config"
	"github.com/san-kum/convlab/internal/panel"
	"github.com/san-kum/convlab/internal/scenario"
)

const (
	metadataFile = "metadata.json"
	panelFile    = "panel.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                `json:"id"`
	Scenario  string                `json:"scenario"`
	Timestamp time.Time             `json:"timestamp"`
	Seed      int64                 `json:"seed"`
	Params    scenario.Params       `json:"params"`
	Analysis  config.AnalysisConfig `json:"analysis"`
	Metrics   map[string]float64    `json:"metrics"`
}

// Metrics flattens the headline numbers of a report. Failed or non-finite
// results are left out.
func Metrics(rep *analysis.Report) map[string]float64 {
	m := make(map[string]float64)
	put := func(name string, v float64) {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			m[name] = v
		}
	}

	if rep.BetaErr == nil {
		put("beta_slope", rep.Beta.Slope)
		put("beta_p", rep.Beta.PValue)
	}
	for _, tr := range rep.Trends {
		if tr.Err != nil {
			continue
		}
		put(string(tr.Index)+"_slope", tr.Slope)
		put(string(tr.Index)+"_p", tr.PValue)
	}
	return m
}

// Save writes meta and the panel under a new run directory and returns its id.
func (s *Store) Save(meta RunMetadata, p *panel.Panel) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Scenario, meta.Timestamp.UnixNano())
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

	csvFile, err := os.Create(filepath.Join(runDir, panelFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := p.WriteCSV(csvFile); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns stored runs, oldest first. Unreadable entries are skipped.
func (s *Store) List() ([]RunMetadata, error) {
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

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadPanel(runID string) (*panel.Panel, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, panelFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return panel.ReadCSV(file)
}
