package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"tausepro/internal/sentinel"
	id "tausepro/pkg/domain"
)

// File keeps every session's documents in one JSON file. adminctl uses it
// so a login survives between invocations.
type File struct {
	path string
	mu   sync.Mutex
}

// fileLayout is session ID -> key -> document.
type fileLayout map[string]map[string]json.RawMessage

func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath is ~/.config/tausepro/session.json, or the working
// directory when no config dir is known.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tausepro-session.json"
	}
	return filepath.Join(dir, "tausepro", "session.json")
}

func (f *File) Load(_ context.Context, sessionID id.SessionID, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, err := f.read()
	if err != nil {
		return nil, err
	}
	doc, ok := layout[sessionID.String()][key]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", key, f.path, sentinel.ErrNotFound)
	}
	return []byte(doc), nil
}

func (f *File) Save(_ context.Context, sessionID id.SessionID, key string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("save %s: %w", key, sentinel.ErrCorrupt)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, err := f.read()
	if err != nil && !errors.Is(err, sentinel.ErrCorrupt) {
		return err
	}
	if layout == nil {
		layout = fileLayout{}
	}
	sid := sessionID.String()
	if layout[sid] == nil {
		layout[sid] = map[string]json.RawMessage{}
	}
	layout[sid][key] = append(json.RawMessage(nil), data...)
	return f.write(layout)
}

func (f *File) Delete(_ context.Context, sessionID id.SessionID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	layout, err := f.read()
	if err != nil {
		if errors.Is(err, sentinel.ErrCorrupt) {
			return f.write(fileLayout{})
		}
		return err
	}
	sid := sessionID.String()
	if _, ok := layout[sid][key]; !ok {
		return nil
	}
	delete(layout[sid], key)
	if len(layout[sid]) == 0 {
		delete(layout, sid)
	}
	return f.write(layout)
}

func (f *File) read() (fileLayout, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileLayout{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(raw) == 0 {
		return fileLayout{}, nil
	}
	var layout fileLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, sentinel.ErrCorrupt)
	}
	return layout, nil
}

// write replaces the file atomically with owner-only permissions, since it
// holds bearer tokens.
func (f *File) write(layout fileLayout) error {
	raw, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // already renamed on success
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close() //nolint:errcheck // chmod error takes precedence
		return fmt.Errorf("chmod %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}
