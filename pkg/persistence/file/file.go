// Package file provides file-based persistence for drafting sessions. Each
// session is one JSON document under the root directory.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pebblepay/scrivener/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string
	mu   sync.RWMutex
}

// NewPersistence creates file persistence rooted at the given directory,
// creating it if needed. Accepts either a bare path or a file:// URL.
func NewPersistence(root string) (*Persistence, error) {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	if err := os.MkdirAll(cleanRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating session directory %s: %w", cleanRoot, err)
	}

	return &Persistence{root: cleanRoot}, nil
}

func (fp *Persistence) sessionPath(id string) string {
	return filepath.Join(fp.root, id+".json")
}

func (fp *Persistence) Sessions(_ context.Context) ([]persistence.Summary, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	entries, err := os.ReadDir(fp.root)
	if err != nil {
		return nil, fmt.Errorf("listing session directory: %w", err)
	}

	summaries := make([]persistence.Summary, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		session, err := fp.readSession(filepath.Join(fp.root, entry.Name()))
		if err != nil {
			// Skip corrupt files; listing should not fail wholesale.
			continue
		}

		summaries = append(summaries, persistence.Summarize(session))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

func (fp *Persistence) SaveSession(_ context.Context, session *persistence.Session) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return persistence.NewSessionError("Save", session.ID, err)
	}

	if err := os.WriteFile(fp.sessionPath(session.ID), data, 0o644); err != nil {
		return persistence.NewSessionError("Save", session.ID, err)
	}

	return nil
}

func (fp *Persistence) SessionByID(_ context.Context, id string) (*persistence.Session, error) {
	fp.mu.RLock()
	defer fp.mu.RUnlock()

	session, err := fp.readSession(fp.sessionPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, persistence.NewSessionError("SessionByID", id, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("SessionByID", id, err)
	}

	return session, nil
}

func (fp *Persistence) DeleteSession(_ context.Context, id string) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	if err := os.Remove(fp.sessionPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
		}

		return persistence.NewSessionError("Delete", id, err)
	}

	return nil
}

// HealthCheck verifies the root directory still exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file persistence there is
// nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

func (fp *Persistence) readSession(path string) (*persistence.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var session persistence.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session file %s: %w", path, err)
	}

	return &session, nil
}
