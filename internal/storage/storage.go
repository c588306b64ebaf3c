// Package storage persists lever's state as a single JSON document and
// renders the Markdown export.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lever/internal/fsutil"
	"lever/internal/state"

	"go.uber.org/zap"
)

// DataFileName is the name of the state document inside the data directory.
const DataFileName = "lever-data.json"

const (
	dataDirPerm  os.FileMode = 0700
	dataFilePerm os.FileMode = 0600

	corruptStampLayout = "20060102-150405"
)

// Storage reads and writes the state document. It implements state.Saver.
type Storage struct {
	dataDir string
	log     *zap.SugaredLogger
	now     func() time.Time // stamps .corrupt files
}

// New returns a Storage rooted at dataDir. Nothing touches the disk until
// the first Load or Save. A nil logger discards output.
func New(dataDir string, log *zap.SugaredLogger) *Storage {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Storage{
		dataDir: dataDir,
		log:     log.With("component", "storage"),
		now:     time.Now,
	}
}

// DataDir returns the directory holding the state document.
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Path returns the full path of the state document.
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, DataFileName)
}

// Save writes st to disk. Failures are logged and otherwise ignored; the
// in-memory state stays authoritative and the next mutation tries again.
func (s *Storage) Save(st *state.State) {
	if err := s.save(st.Snapshot()); err != nil {
		s.log.Errorw("save failed", "path", s.Path(), "error", err)
	}
}

func (s *Storage) save(snap state.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize %s: %w", DataFileName, err)
	}

	if err := fsutil.EnsureDir(s.dataDir, dataDirPerm); err != nil {
		return err
	}

	// Keep a best-effort backup before overwriting.
	fsutil.BestEffortBackup(s.Path(), dataFilePerm)

	if err := fsutil.WriteFileAtomic(s.Path(), data, dataFilePerm); err != nil {
		return fmt.Errorf("write %s: %w", DataFileName, err)
	}
	return nil
}

// Load reads the state document. ok is false when there is nothing usable on
// disk: on a first run, or when both the document and its backup are
// unreadable. A document that cannot be parsed is moved aside so the next
// save does not overwrite it.
func (s *Storage) Load() (snap state.Snapshot, ok bool) {
	path := s.Path()

	snap, err := readSnapshot(path)
	if err == nil {
		return snap, true
	}
	if errors.Is(err, os.ErrNotExist) {
		s.log.Debugw("no saved state", "path", path)
		return state.Snapshot{}, false
	}

	s.log.Errorw("load failed", "path", path, "error", err)

	corruptPath := s.moveAside(path)

	bak, bakErr := readSnapshot(path + ".bak")
	if bakErr == nil {
		s.log.Warnw("recovered state from backup", "backup", path+".bak", "corrupt", corruptPath)
		return bak, true
	}
	return state.Snapshot{}, false
}

// LoadInto loads the document and restores it into st. Invalid completed-day
// keys are logged and dropped. It reports whether anything was loaded.
func (s *Storage) LoadInto(st *state.State) bool {
	snap, ok := s.Load()
	if !ok {
		return false
	}
	if dropped := st.Restore(snap); len(dropped) > 0 {
		s.log.Warnw("dropped invalid completed days", "days", dropped)
	}
	return true
}

func readSnapshot(path string) (state.Snapshot, error) {
	var snap state.Snapshot

	data, err := os.ReadFile(path)
	if err != nil {
		return snap, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, fmt.Errorf("%s is empty", filepath.Base(path))
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return snap, nil
}

// moveAside renames an unreadable document so the user's bytes survive.
func (s *Storage) moveAside(path string) string {
	corruptPath := fmt.Sprintf("%s.corrupt.%s", path, s.now().Format(corruptStampLayout))
	if err := os.Rename(path, corruptPath); err != nil {
		s.log.Warnw("could not move corrupt file aside", "path", path, "error", err)
		return ""
	}
	return corruptPath
}
