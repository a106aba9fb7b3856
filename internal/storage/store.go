package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	ErrForbiddenDir = errors.New("storage: forbidden output directory")
	ErrRunExists    = errors.New("storage: run directory already in use")
	ErrNoRun        = errors.New("storage: run not found")
)

const (
	metadataFile = "metadata.json"
	paramsFile   = "params.yaml"
	logFile      = "run.log"
	topoFile     = "lb.topo"
	dataDir      = "data"
)

// forbidden holds substrings that must not appear in a run name.
var forbidden = []string{"/", "topo", "lb_code", "gnuplot-palettes", "gnuplot-scripts"}

// CheckDirName rejects run names that would collide with input files or
// escape the storage root.
func CheckDirName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrForbiddenDir, name)
	}
	for _, f := range forbidden {
		if strings.Contains(name, f) {
			return fmt.Errorf("%w: %q contains %q", ErrForbiddenDir, name, f)
		}
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrForbiddenDir, name)
	}
	return nil
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Timestamp   time.Time          `json:"timestamp"`
	NX          int                `json:"nx"`
	NY          int                `json:"ny"`
	Tau         float64            `json:"tau"`
	Potential   string             `json:"potential"`
	Forcing     string             `json:"forcing"`
	Seed        int64              `json:"seed"`
	StartStep   int                `json:"start_step"`
	FinalStep   int                `json:"final_step"`
	OutInterval int                `json:"out_interval"`
	Resumed     bool               `json:"resumed"`
	Halted      bool               `json:"halted"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Run is one output directory under the store.
type Run struct {
	Dir  string
	Meta RunMetadata
}

// Create prepares a fresh run directory. An existing run with a log file is
// only reused when overwrite is set.
func (s *Store) Create(name string, overwrite bool) (*Run, error) {
	if err := CheckDirName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.baseDir, name)
	if _, err := os.Stat(filepath.Join(dir, logFile)); err == nil && !overwrite {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDir), 0755); err != nil {
		return nil, err
	}
	return &Run{
		Dir: dir,
		Meta: RunMetadata{
			ID:        uuid.NewString(),
			Name:      name,
			Timestamp: time.Now(),
		},
	}, nil
}

// Open returns an existing run, keeping its metadata when present.
func (s *Store) Open(name string) (*Run, error) {
	if err := CheckDirName(name); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.baseDir, name)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoRun, dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, dataDir), 0755); err != nil {
		return nil, err
	}
	run := &Run{Dir: dir}
	if meta, err := s.Load(name); err == nil {
		run.Meta = *meta
	} else {
		run.Meta = RunMetadata{ID: uuid.NewString(), Name: name, Timestamp: time.Now()}
	}
	return run, nil
}

func (r *Run) DataDir() string  { return filepath.Join(r.Dir, dataDir) }
func (r *Run) LogPath() string  { return filepath.Join(r.Dir, logFile) }
func (r *Run) TopoPath() string { return filepath.Join(r.Dir, topoFile) }

// HistoryPath is the diagnostics database of the run.
func (r *Run) HistoryPath() string { return filepath.Join(r.Dir, "history.db") }

func (r *Run) SaveMetadata() error {
	f, err := os.Create(filepath.Join(r.Dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Meta)
}

// SaveParams dumps the run configuration next to the data.
func (r *Run) SaveParams(params any) error {
	data, err := yaml.Marshal(params)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.Dir, paramsFile), data, 0644)
}

// List returns the metadata of every run, newest first.
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
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(name string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, name, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, name)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Run returns the directory handle of a stored run.
func (s *Store) Run(name string) (*Run, error) {
	meta, err := s.Load(name)
	if err != nil {
		return nil, err
	}
	return &Run{Dir: filepath.Join(s.baseDir, name), Meta: *meta}, nil
}
