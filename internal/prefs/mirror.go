package prefs

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Mirror is a synchronous wrapper around one JSON preferences file.
//
// Values are held in memory and written through on every [Mirror.Set]. All
// failure modes are non-fatal: reads fall back to defaults, writes are
// logged and dropped. A Mirror is safe for concurrent use.
type Mirror struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	values map[string]json.RawMessage
}

// Open loads the preferences file at path, creating an empty mirror if the
// file does not exist or cannot be parsed.
//
// Open never fails; a corrupt or unreadable file is logged and treated as
// empty, matching the fall-back-to-default contract.
func Open(path string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Mirror{
		path:   path,
		logger: logger,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("preferences unreadable, starting empty", "path", path, "error", err)
		}
		return m
	}

	if err := json.Unmarshal(data, &m.values); err != nil {
		logger.Warn("preferences corrupt, starting empty", "path", path, "error", err)
		m.values = make(map[string]json.RawMessage)
	}
	return m
}

// Get decodes the value stored under key into out.
//
// Returns false and leaves out untouched if the key is absent or the stored
// value cannot be decoded into out's type. Callers keep their default in
// that case.
func (m *Mirror) Get(key string, out any) bool {
	m.mu.Lock()
	raw, ok := m.values[key]
	m.mu.Unlock()

	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		m.logger.Warn("preference has unexpected shape", "key", key, "error", err)
		return false
	}
	return true
}

// GetString returns the string stored under key, or fallback if absent.
func (m *Mirror) GetString(key, fallback string) string {
	v := fallback
	m.Get(key, &v)
	return v
}

// GetBool returns the bool stored under key, or fallback if absent.
func (m *Mirror) GetBool(key string, fallback bool) bool {
	v := fallback
	m.Get(key, &v)
	return v
}

// Set stores v under key and writes the file through synchronously.
//
// Serialization and write failures are logged and absorbed; the in-memory
// value is still updated when serialization succeeds so the session keeps a
// consistent view even if the disk copy is stale.
func (m *Mirror) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		m.logger.Warn("preference not serializable", "key", key, "error", err)
		return
	}

	m.mu.Lock()
	m.values[key] = raw
	data, err := json.MarshalIndent(m.values, "", "  ")
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("preferences not serializable", "error", err)
		return
	}
	m.flush(data)
}

// Delete removes key and writes the file through. Deleting an absent key is
// a no-op.
func (m *Mirror) Delete(key string) {
	m.mu.Lock()
	if _, ok := m.values[key]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.values, key)
	data, err := json.MarshalIndent(m.values, "", "  ")
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("preferences not serializable", "error", err)
		return
	}
	m.flush(data)
}

// flush writes the serialized preference map to disk, creating parent
// directories as needed.
func (m *Mirror) flush(data []byte) {
	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			m.logger.Warn("preferences directory not creatable", "path", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		m.logger.Warn("preferences not writable", "path", m.path, "error", err)
	}
}
