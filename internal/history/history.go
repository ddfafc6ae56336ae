// Package history remembers which tests failed in the previous run of each
// (test root, implementation) pair so that they can be rerun on their own.
package history

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Bump when Record changes incompatibly; older records read as missing.
const schemaVersion uint16 = 1

// Record is what is kept of one run.
type Record struct {
	Schema    uint16
	RunID     uuid.UUID
	Executer  string
	Root      string
	StartedAt time.Time
	// Failed and Errored hold test display names.
	Failed  []string
	Errored []string
}

// NewRecord starts a record for a run of executer over root.
func NewRecord(root, executer string, startedAt time.Time) *Record {
	return &Record{
		Schema:    schemaVersion,
		RunID:     uuid.New(),
		Executer:  executer,
		Root:      root,
		StartedAt: startedAt.UTC(),
	}
}

// Rerun returns the names a --failed run should select.
func (r *Record) Rerun() []string {
	out := make([]string, 0, len(r.Failed)+len(r.Errored))
	out = append(out, r.Failed...)
	return append(out, r.Errored...)
}

// Store keeps records as msgpack files in one directory.
// Safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir is $XDG_CACHE_HOME/c0check/runs, or its platform equivalent.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "c0check", "runs"), nil
}

// Open returns a store rooted at dir; an empty dir means DefaultDir.
// The directory is created on the first Put.
func Open(dir string) (*Store, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, fmt.Errorf("locate run history: %w", err)
		}
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory records live in.
func (s *Store) Dir() string { return s.dir }

func (s *Store) pathFor(root, executer string) string {
	sum := sha256.Sum256([]byte(root + "\x00" + executer))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+".mp")
}

// Put replaces the record for (rec.Root, rec.Executer). Readers never see a
// partially written file.
func (s *Store) Put(rec *Record) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(rec.Root, rec.Executer)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	rec.Schema = schemaVersion
	if err = msgpack.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("encode run record: %w", err)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get loads the record for (root, executer). A missing record, or one
// written by an incompatible version, reports ok == false.
func (s *Store) Get(root, executer string) (rec *Record, ok bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.pathFor(root, executer))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	rec = new(Record)
	if err := msgpack.NewDecoder(f).Decode(rec); err != nil {
		return nil, false, fmt.Errorf("decode run record %s: %w", f.Name(), err)
	}
	if rec.Schema != schemaVersion || rec.Root != root || rec.Executer != executer {
		return nil, false, nil
	}
	return rec, true, nil
}
