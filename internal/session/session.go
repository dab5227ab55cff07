// Package session keeps per-session upload and conversation state in memory.
//
// Sessions are created on first reference and live for the lifetime of the
// process. Each Session guards its own state, so requests for different
// sessions never contend and requests for the same session serialise only
// on the fields they touch.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

// ErrSessionNotFound is returned when a lookup names an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// Turn is one answered query. It encodes as a two-element JSON array
// [query, answer].
type Turn struct {
	Query  string
	Answer string
}

// MarshalJSON implements json.Marshaler.
func (t Turn) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Query, t.Answer})
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Turn) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("turn must have 2 elements, got %d", len(pair))
	}
	t.Query, t.Answer = pair[0], pair[1]
	return nil
}

// BuildFunc builds a retrieval index over the given stored file paths.
type BuildFunc func(files []string) (*vectorstore.Index, error)

// Session holds the state of one client session.
type Session struct {
	id        string
	createdAt time.Time

	mu      sync.Mutex
	files   []string
	history []Turn
	index   *vectorstore.Index

	// buildMu serialises index builds without blocking uploads or reads.
	buildMu sync.Mutex
}

func newSession(id string) *Session {
	return &Session{id: id, createdAt: time.Now()}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns when the session was first referenced.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// AddFiles appends stored file paths and returns the new file count.
func (s *Session) AddFiles(paths ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = append(s.files, paths...)
	return len(s.files)
}

// Files returns a copy of the stored file paths in upload order.
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// AppendTurn records an answered query and returns the full history.
func (s *Session) AppendTurn(query, answer string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Turn{Query: query, Answer: answer})
	return append([]Turn(nil), s.history...)
}

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.history...)
}

// Index returns the cached index, or nil if none has been built.
func (s *Session) Index() *vectorstore.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// IndexOrBuild returns the cached index, building it with build from the
// current file list if none exists. Concurrent callers wait for a single
// build. A failed build caches nothing. Once cached, the index is returned
// unchanged even if more files are added later.
func (s *Session) IndexOrBuild(build BuildFunc) (idx *vectorstore.Index, built bool, err error) {
	if idx := s.Index(); idx != nil {
		return idx, false, nil
	}

	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if idx := s.Index(); idx != nil {
		return idx, false, nil
	}

	idx, err = build(s.Files())
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	s.index = idx
	s.mu.Unlock()
	return idx, true, nil
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID        string    `json:"session_id"`
	Files     []string  `json:"files"`
	History   []Turn    `json:"history"`
	Indexed   bool      `json:"indexed"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot returns a consistent copy of the session state. Files are
// reported by base name.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, len(s.files))
	for i, f := range s.files {
		files[i] = filepath.Base(f)
	}
	history := append([]Turn{}, s.history...)

	return Snapshot{
		ID:        s.id,
		Files:     files,
		History:   history,
		Indexed:   s.index != nil,
		CreatedAt: s.createdAt,
	}
}
