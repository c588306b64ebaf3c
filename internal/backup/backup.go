// Package backup keeps timestamped copies of lever's state document and
// restores them.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"lever/internal/fsutil"
	"lever/internal/state"
	"lever/internal/storage"
)

const (
	ManifestVersion = "1"
	ManifestFile    = "manifest.json"
	BackupsDir      = "backups"

	nameLayout = "2006-01-02_150405"
)

// Manager creates and restores backups under <data dir>/backups.
type Manager struct {
	dataDir    string
	backupDir  string
	appVersion string
	now        func() time.Time
}

// Manifest describes one backup.
type Manifest struct {
	Version    string    `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	AppVersion string    `json:"app_version"`
	Tasks      int       `json:"tasks"`
	Completed  int       `json:"completed_days"`
}

// Info summarizes a backup for listing.
type Info struct {
	Name string
	Path string
	Manifest
}

// NewManager returns a Manager for the state document in dataDir.
func NewManager(dataDir, appVersion string) *Manager {
	return &Manager{
		dataDir:    dataDir,
		backupDir:  filepath.Join(dataDir, BackupsDir),
		appVersion: appVersion,
		now:        time.Now,
	}
}

func (m *Manager) dataPath() string {
	return filepath.Join(m.dataDir, storage.DataFileName)
}

// Create copies the current state document into a new backup and returns
// the backup's name. The document must parse.
func (m *Manager) Create() (string, error) {
	data, err := os.ReadFile(m.dataPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("nothing to back up: %s does not exist", m.dataPath())
		}
		return "", fmt.Errorf("read %s: %w", storage.DataFileName, err)
	}
	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return "", fmt.Errorf("parse %s: %w", storage.DataFileName, err)
	}

	now := m.now()
	name := fmt.Sprintf("%s_%03d", now.Format(nameLayout), now.Nanosecond()/1e6)
	dir := filepath.Join(m.backupDir, name)
	if err := fsutil.EnsureDir(dir, 0700); err != nil {
		return "", fmt.Errorf("create backup: %w", err)
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(dir, storage.DataFileName), data, 0600); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("copy %s: %w", storage.DataFileName, err)
	}

	manifest := Manifest{
		Version:    ManifestVersion,
		CreatedAt:  now,
		AppVersion: m.appVersion,
		Tasks:      len(snap.Tasks),
		Completed:  len(snap.CompletedDays),
	}
	if err := writeJSON(filepath.Join(dir, ManifestFile), manifest); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return name, nil
}

// List returns the backups, newest first. Directories that are not backups
// are skipped.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := m.info(entry.Name())
		if err != nil {
			continue
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

func (m *Manager) info(name string) (Info, error) {
	createdAt, err := parseBackupName(name)
	if err != nil {
		return Info{}, err
	}
	dir := filepath.Join(m.backupDir, name)

	var manifest Manifest
	if err := readJSON(filepath.Join(dir, ManifestFile), &manifest); err != nil {
		manifest = Manifest{CreatedAt: createdAt}
	}
	return Info{Name: name, Path: dir, Manifest: manifest}, nil
}

// Restore replaces the state document with the named backup. The current
// document, if any, is backed up first; its name is returned.
func (m *Manager) Restore(name string) (safety string, err error) {
	if err := validateBackupName(name); err != nil {
		return "", err
	}

	src := filepath.Join(m.backupDir, name, storage.DataFileName)
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("backup not found: %s", name)
		}
		return "", fmt.Errorf("read backup %s: %w", name, err)
	}
	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return "", fmt.Errorf("backup %s is invalid: %w", name, err)
	}

	if _, err := os.Stat(m.dataPath()); err == nil {
		safety, err = m.Create()
		if err != nil {
			return "", fmt.Errorf("create safety backup: %w", err)
		}
	}

	if err := fsutil.EnsureDir(m.dataDir, 0700); err != nil {
		return safety, err
	}
	if err := fsutil.WriteFileAtomic(m.dataPath(), data, 0600); err != nil {
		return safety, fmt.Errorf("restore %s (safety backup: %s): %w", name, safety, err)
	}
	return safety, nil
}

// RestoreLatest restores the most recent backup and returns its name.
func (m *Manager) RestoreLatest() (name, safety string, err error) {
	backups, err := m.List()
	if err != nil {
		return "", "", err
	}
	if len(backups) == 0 {
		return "", "", fmt.Errorf("no backups available")
	}
	name = backups[0].Name
	safety, err = m.Restore(name)
	return name, safety, err
}

// Delete removes the named backup.
func (m *Manager) Delete(name string) error {
	if err := validateBackupName(name); err != nil {
		return err
	}
	dir := filepath.Join(m.backupDir, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("backup not found: %s", name)
	}
	return os.RemoveAll(dir)
}

// Prune keeps the keep most recent backups and deletes the rest. It returns
// how many were deleted.
func (m *Manager) Prune(keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative")
	}
	backups, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, b := range backups[keep:] {
		if err := m.Delete(b.Name); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func validateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name is required")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	if _, err := parseBackupName(name); err != nil {
		return fmt.Errorf("invalid backup name: %q", name)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(path, data, 0600)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// parseBackupName reads the timestamp out of a backup name,
// 2006-01-02_150405_000.
func parseBackupName(name string) (time.Time, error) {
	if len(name) != len(nameLayout)+4 || name[len(nameLayout)] != '_' {
		return time.Time{}, fmt.Errorf("invalid backup name %q", name)
	}
	base, err := time.ParseInLocation(nameLayout, name[:len(nameLayout)], time.Local)
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.Atoi(name[len(nameLayout)+1:])
	if err != nil || ms < 0 || ms > 999 {
		return time.Time{}, fmt.Errorf("invalid milliseconds in %q", name)
	}
	return base.Add(time.Duration(ms) * time.Millisecond), nil
}
