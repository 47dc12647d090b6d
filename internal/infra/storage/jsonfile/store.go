package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Store persists each logical collection as one JSON document on local
// disk: a flat map keyed by the collection name ("subscriptions", "polls",
// "usage") to the full value. Every write replaces the whole document via
// write-temp-file-then-atomic-rename so a crash mid-write never leaves a
// partial file behind.
//
// All access is serialized behind one mutex; this process is the only
// writer.
type Store struct {
	prefix string // directory/basename, e.g. data/bot
	log    *zerolog.Logger

	mu sync.Mutex
}

func Open(path string, logger *zerolog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage: path is required for the file driver")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	storeLog := logger.With().Str("component", "jsonfile").Logger()
	return &Store{prefix: filepath.Join(dir, base), log: &storeLog}, nil
}

func (s *Store) docPath(collection string) string {
	return s.prefix + "." + collection + ".json"
}

// readDoc decodes the collection into out. A missing file is an empty
// collection, not an error.
func (s *Store) readDoc(collection string, out any) error {
	b, err := os.ReadFile(s.docPath(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("storage: read %s: %w", collection, err)
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("storage: parse %s: %w", collection, err)
	}
	raw, ok := doc[collection]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("storage: decode %s: %w", collection, err)
	}
	return nil
}

// writeDoc replaces the collection document. The temp file lives in the
// same directory so the rename stays on one filesystem.
func (s *Store) writeDoc(collection string, v any) error {
	b, err := json.MarshalIndent(map[string]any{collection: v}, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", collection, err)
	}
	path := s.docPath(collection)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("storage: temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("storage: write %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: close %s: %w", collection, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("storage: rename %s: %w", collection, err)
	}
	return nil
}
