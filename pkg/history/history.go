package history

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// summaryLen is how many characters of instruction content the log keeps.
const summaryLen = 80

// timestampLayout matches the layout existing history logs were written with.
const timestampLayout = "2006-01-02 15:04:05"

// Entry is one audit record in the history log. Each entry references the
// backup taken immediately before its edit; the reference is a plain path,
// nothing enforces that the backup file still exists.
type Entry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	File      string `json:"file"`
	Action    string `json:"action"`
	Anchor    string `json:"anchor,omitempty"`
	Backup    string `json:"backup"`
	Summary   string `json:"summary"`
}

// Recorder persists pre-edit backups and the history log. The log is a
// single JSON array rewritten in full on every append; it assumes a single
// writer for the duration of a run.
type Recorder struct {
	backupDir   string
	historyPath string
}

// NewRecorder creates a recorder writing backups under backupDir and the
// history log at historyPath.
func NewRecorder(backupDir, historyPath string) *Recorder {
	return &Recorder{
		backupDir:   backupDir,
		historyPath: historyPath,
	}
}

// BackupDir returns the backup directory path.
func (r *Recorder) BackupDir() string {
	return r.backupDir
}

// HistoryPath returns the history log path.
func (r *Recorder) HistoryPath() string {
	return r.historyPath
}

// shortID returns an 8-hex-character random id.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Backup copies the file's current bytes to a uniquely named file inside the
// backup directory and returns its path. Backups are never deduplicated: N
// calls produce N files, even for identical content.
func (r *Recorder) Backup(ctx context.Context, path string) (string, error) {
	logger := zerolog.Ctx(ctx)

	if err := os.MkdirAll(r.backupDir, 0o755); err != nil {
		return "", errors.Errorf("creating backup dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}

	dest := filepath.Join(r.backupDir, filepath.Base(path)+"."+shortID()+".bak")
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", errors.Errorf("writing backup %s: %w", dest, err)
	}

	logger.Debug().Str("file", path).Str("backup", dest).Msg("backed up file")
	return dest, nil
}

// NewEntry builds a history entry for an applied instruction. The summary is
// the first 80 characters of the content with newlines flattened and an
// ellipsis suffix.
func NewEntry(file, action, anchor, content, backupPath string) Entry {
	return Entry{
		ID:        shortID(),
		Timestamp: time.Now().Format(timestampLayout),
		File:      file,
		Action:    action,
		Anchor:    anchor,
		Backup:    backupPath,
		Summary:   summarize(content),
	}
}

func summarize(content string) string {
	runes := []rune(content)
	if len(runes) > summaryLen {
		runes = runes[:summaryLen]
	}
	return strings.ReplaceAll(string(runes), "\n", " ") + "..."
}

// Append loads the existing history log (an empty list if the file does not
// exist yet), appends one entry, and rewrites the whole file. Not safe for
// concurrent writers.
func (r *Recorder) Append(ctx context.Context, entry Entry) error {
	logger := zerolog.Ctx(ctx)

	entries, err := r.List(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o755); err != nil {
		return errors.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Errorf("encoding history: %w", err)
	}
	if err := os.WriteFile(r.historyPath, data, 0o644); err != nil {
		return errors.Errorf("writing history log: %w", err)
	}

	logger.Debug().Str("id", entry.ID).Str("file", entry.File).Msg("logged history entry")
	return nil
}

// List reads the history log back. A missing log file yields an empty list.
func (r *Recorder) List(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(r.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading history log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Errorf("decoding history log: %w", err)
	}
	return entries, nil
}
