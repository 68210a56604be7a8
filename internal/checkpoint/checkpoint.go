// Package checkpoint persists per-run extraction progress as small JSON
// files under <run-root>/<extractorID>/<stepID>.json. Checkpoints are
// recovery hints for restarted runs, not a database; clearing them is
// always safe.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SchemaVersion is embedded in every checkpoint file. Files with any
// other version are refused rather than partially decoded.
const SchemaVersion = 1

// StepComplete is the step id that marks an extractor as finished.
const StepComplete = "_complete"

type envelope struct {
	SchemaVersion int             `json:"schema_version"`
	SavedAt       time.Time       `json:"saved_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Store is a file-backed checkpoint store scoped to one run directory.
type Store struct {
	root string
}

// NewStore creates a store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the run directory the store writes under.
func (s *Store) Root() string { return s.root }

func (s *Store) path(extractorID, stepID string) (string, error) {
	if err := validateID(extractorID); err != nil {
		return "", fmt.Errorf("extractor id: %w", err)
	}
	if err := validateID(stepID); err != nil {
		return "", fmt.Errorf("step id: %w", err)
	}
	return filepath.Join(s.root, extractorID, stepID+".json"), nil
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("must not be empty")
	}
	if strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("%q contains path elements", id)
	}
	return nil
}

// Save writes a checkpoint value under (extractorID, stepID).
func (s *Store) Save(extractorID, stepID string, value any) error {
	path, err := s.path(extractorID, stepID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint payload: %w", err)
	}
	data, err := json.Marshal(envelope{
		SchemaVersion: SchemaVersion,
		SavedAt:       time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads the checkpoint payload into out. It returns (false, nil)
// when no checkpoint exists and an error for version mismatches.
func (s *Store) Load(extractorID, stepID string, out any) (bool, error) {
	path, err := s.path(extractorID, stepID)
	if err != nil {
		return false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading checkpoint: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return false, fmt.Errorf("parsing checkpoint: %w", err)
	}
	if env.SchemaVersion != SchemaVersion {
		return false, fmt.Errorf("checkpoint schema version %d not supported (expected %d)", env.SchemaVersion, SchemaVersion)
	}
	if out != nil {
		if err := json.Unmarshal(env.Payload, out); err != nil {
			return false, fmt.Errorf("decoding checkpoint payload: %w", err)
		}
	}
	return true, nil
}

// Exists reports whether a checkpoint is present under (extractorID, stepID).
func (s *Store) Exists(extractorID, stepID string) bool {
	path, err := s.path(extractorID, stepID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Clear removes every checkpoint for one extractor.
func (s *Store) Clear(extractorID string) error {
	if err := validateID(extractorID); err != nil {
		return fmt.Errorf("extractor id: %w", err)
	}
	return os.RemoveAll(filepath.Join(s.root, extractorID))
}

// ClearAll removes every checkpoint in the run directory.
func (s *Store) ClearAll() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return fmt.Errorf("reading checkpoint root: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExtractorProgress summarizes one extractor's checkpoints.
type ExtractorProgress struct {
	Complete        bool `json:"complete"`
	CheckpointCount int  `json:"checkpoint_count"`
}

// GetProgress returns per-extractor checkpoint progress, keyed by
// extractor id.
func (s *Store) GetProgress() (map[string]ExtractorProgress, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint root: %w", err)
	}

	progress := make(map[string]ExtractorProgress)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading checkpoints for %s: %w", e.Name(), err)
		}
		var p ExtractorProgress
		names := make([]string, 0, len(files))
		for _, f := range files {
			if !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			names = append(names, f.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			p.CheckpointCount++
			if strings.TrimSuffix(n, ".json") == StepComplete {
				p.Complete = true
			}
		}
		progress[e.Name()] = p
	}
	return progress, nil
}
