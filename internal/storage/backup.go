package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupNotFound   = errors.New("backup not found")
	ErrBackupExists     = errors.New("backup already exists")
	ErrBackupCorrupted  = errors.New("backup failed integrity check")
	ErrInvalidBackupTag = errors.New("invalid backup tag")
	ErrInMemoryDatabase = errors.New("in-memory database has no file to back up or restore")
)

const (
	backupExt   = ".db"
	metadataExt = ".meta.json"
	memoryPath  = ":memory:"
)

// ledgerTables are counted into every backup's metadata.
var ledgerTables = []string{"accounts", "transaction_types", "transactions", "scheduled_transactions"}

// BackupInfo describes a backup file and the ledger it captured.
type BackupInfo struct {
	CreatedAt     time.Time      `json:"created_at"`
	RowCounts     map[string]int `json:"row_counts"`
	Tag           string         `json:"tag"`
	Description   string         `json:"description"`
	FileSize      int64          `json:"file_size"`
	SchemaVersion int            `json:"schema_version"`
}

// Backups manages point-in-time copies of a database file. Each backup is a
// standalone SQLite file with a JSON metadata file beside it.
type Backups struct {
	store *SQLiteStorage
	now   func() time.Time
	dir   string
}

// DefaultBackupDir returns the backups directory kept next to dbPath.
func DefaultBackupDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "backups")
}

// NewBackups prepares dir to hold backups of store. An empty dir selects
// DefaultBackupDir for the store's path.
func NewBackups(store *SQLiteStorage, dir string) (*Backups, error) {
	if dir == "" {
		if store.dbPath == memoryPath {
			return nil, ErrInMemoryDatabase
		}
		dir = DefaultBackupDir(store.dbPath)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &Backups{store: store, dir: dir, now: time.Now}, nil
}

// Dir returns the directory backups are written to.
func (b *Backups) Dir() string {
	return b.dir
}

// Create writes a consistent copy of the database under tag. An empty tag is
// replaced by one derived from the current time.
func (b *Backups) Create(ctx context.Context, tag, description string) (*BackupInfo, error) {
	if tag == "" {
		tag = "backup-" + b.now().Format("2006-01-02-150405")
	}
	if err := validateTag(tag); err != nil {
		return nil, err
	}

	backupPath := b.backupPath(tag)
	if _, err := os.Stat(backupPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, tag)
	}

	version, err := b.store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	counts, err := b.rowCounts(ctx)
	if err != nil {
		return nil, err
	}

	// VACUUM INTO produces a compacted, transactionally consistent copy,
	// including anything still sitting in the WAL.
	if _, err := b.store.db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return nil, newError("backup", fmt.Errorf("failed to write backup: %w", err))
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := &BackupInfo{
		Tag:           tag,
		CreatedAt:     b.now().UTC(),
		Description:   description,
		FileSize:      stat.Size(),
		SchemaVersion: version,
		RowCounts:     counts,
	}

	if err := writeMetadata(b.metadataPath(tag), info); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("failed to remove backup after metadata error", "path", backupPath, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("created backup", "tag", tag, "path", backupPath, "size", info.FileSize)
	return info, nil
}

// List returns every backup in the directory, newest first. Backups whose
// metadata cannot be read are skipped.
func (b *Backups) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, metadataExt) {
			continue
		}

		tag := strings.TrimSuffix(name, metadataExt)
		info, err := b.Get(tag)
		if err != nil {
			slog.Warn("skipping unreadable backup", "tag", tag, "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	slices.SortFunc(backups, func(x, y BackupInfo) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})
	return backups, nil
}

// Get returns the metadata of a single backup.
func (b *Backups) Get(tag string) (*BackupInfo, error) {
	if err := validateTag(tag); err != nil {
		return nil, err
	}
	if _, err := os.Stat(b.backupPath(tag)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, tag)
		}
		return nil, fmt.Errorf("failed to access backup: %w", err)
	}
	return readMetadata(b.metadataPath(tag))
}

// Restore replaces the database file with the backup tagged tag. The storage
// is closed first and stays closed: callers must reopen the database
// afterwards. If the copy fails the previous file is put back.
func (b *Backups) Restore(ctx context.Context, tag string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if b.store.dbPath == memoryPath {
		return ErrInMemoryDatabase
	}
	if _, err := b.Get(tag); err != nil {
		return err
	}

	backupPath := b.backupPath(tag)
	if err := verifyIntegrity(ctx, backupPath); err != nil {
		return fmt.Errorf("%w: %w", ErrBackupCorrupted, err)
	}

	if err := b.store.Close(); err != nil {
		return newError("restore", fmt.Errorf("failed to close database: %w", err))
	}

	dbPath := b.store.dbPath
	safety := dbPath + ".pre-restore"
	if err := copyFile(dbPath, safety); err != nil {
		return fmt.Errorf("failed to save current database: %w", err)
	}

	// Stale WAL frames would be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove journal file", "path", dbPath+suffix, "error", err)
		}
	}

	if err := copyFile(backupPath, dbPath); err != nil {
		if putBack := copyFile(safety, dbPath); putBack != nil {
			slog.Error("failed to put back database after restore failure", "error", putBack)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(safety); err != nil {
		slog.Warn("failed to remove pre-restore copy", "path", safety, "error", err)
	}

	slog.Info("restored backup", "tag", tag, "path", dbPath)
	return nil
}

// Delete removes a backup and its metadata.
func (b *Backups) Delete(tag string) error {
	if err := validateTag(tag); err != nil {
		return err
	}

	if err := os.Remove(b.backupPath(tag)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, tag)
		}
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(b.metadataPath(tag)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to remove backup metadata", "tag", tag, "error", err)
	}

	slog.Info("deleted backup", "tag", tag)
	return nil
}

func (b *Backups) backupPath(tag string) string {
	return filepath.Join(b.dir, tag+backupExt)
}

func (b *Backups) metadataPath(tag string) string {
	return filepath.Join(b.dir, tag+metadataExt)
}

func (b *Backups) rowCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(ledgerTables))
	for _, table := range ledgerTables {
		// #nosec G201 - table names come from ledgerTables
		n, err := b.store.count(ctx, "backup", fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

func validateTag(tag string) error {
	if strings.TrimSpace(tag) == "" ||
		strings.ContainsAny(tag, `/\`) ||
		strings.Contains(tag, "..") ||
		strings.HasPrefix(tag, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidBackupTag, tag)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check reported: %s", result)
	}
	return nil
}

func writeMetadata(path string, info *BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*BackupInfo, error) {
	// #nosec G304 - path is built from a validated tag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup metadata: %w", err)
	}

	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse backup metadata: %w", err)
	}
	return &info, nil
}

// copyFile copies src over dst through a temporary file and a rename, so a
// reader never sees a partially written dst.
func copyFile(src, dst string) error {
	// #nosec G304 - both paths are derived from the configured database path
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			slog.Error("failed to close source file", "error", err)
		}
	}()

	tmp := dst + ".tmp"
	// #nosec G304
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, dst)
}
