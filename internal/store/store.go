// Package store persists deliberation sessions as one directory of JSON
// documents per session. Every write goes to a temporary file first and
// is renamed into place, so a crash never leaves a partial document.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dev.quorum.council/internal/adaptive"
	"dev.quorum.council/internal/engine"
	"dev.quorum.council/internal/integrity"
)

const (
	sessionFile   = "session.json"
	synthesisFile = "synthesis.json"
	integrityFile = "integrity.json"
	decisionsFile = "decisions.json"
	dirMode       = 0o755
	fileMode      = 0o644
)

// Store writes session artifacts under an explicit root directory. The
// root is passed at construction so tests can use isolated temporary
// roots; nothing here reads ambient process-wide paths.
type Store struct {
	root string
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("store: create root %s: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

// SessionDir returns the directory holding one session's documents.
func (s *Store) SessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

// SaveSession writes the session metadata document.
func (s *Store) SaveSession(session *engine.Session) error {
	return s.writeDoc(session.ID, sessionFile, session)
}

// SavePhase writes one executed phase's output. seq is the 1-based
// execution position, kept in the filename so a directory listing shows
// the execution order.
func (s *Store) SavePhase(sessionID string, seq int, output engine.PhaseOutput) error {
	name := fmt.Sprintf("phase_%03d_%s.json", seq, output.Phase)
	return s.writeDoc(sessionID, name, output)
}

// SaveSynthesis writes the final answer document.
func (s *Store) SaveSynthesis(sessionID string, synthesis engine.Synthesis) error {
	return s.writeDoc(sessionID, synthesisFile, synthesis)
}

// SaveIntegrity writes the ordered hash-chain entries.
func (s *Store) SaveIntegrity(sessionID string, entries []integrity.Entry) error {
	return s.writeDoc(sessionID, integrityFile, entries)
}

// SaveDecisions writes the adaptive decision log.
func (s *Store) SaveDecisions(sessionID string, decisions []adaptive.Decision) error {
	return s.writeDoc(sessionID, decisionsFile, decisions)
}

// LoadSession reads a session's metadata back.
func (s *Store) LoadSession(sessionID string) (*engine.Session, error) {
	var session engine.Session
	if err := s.readDoc(sessionID, sessionFile, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// LoadPhases reads every persisted phase output in execution order.
func (s *Store) LoadPhases(sessionID string) ([]engine.PhaseOutput, error) {
	pattern := filepath.Join(s.SessionDir(sessionID), "phase_*.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("store: list phases for %s: %w", sessionID, err)
	}
	// Glob results are sorted, and the zero-padded sequence prefix makes
	// lexical order the execution order.
	outputs := make([]engine.PhaseOutput, 0, len(paths))
	for _, path := range paths {
		var output engine.PhaseOutput
		if err := readJSON(path, &output); err != nil {
			return nil, err
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// LoadIntegrity reads the persisted hash-chain entries.
func (s *Store) LoadIntegrity(sessionID string) ([]integrity.Entry, error) {
	var entries []integrity.Entry
	if err := s.readDoc(sessionID, integrityFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// LoadSynthesis reads the final answer document.
func (s *Store) LoadSynthesis(sessionID string) (*engine.Synthesis, error) {
	var synthesis engine.Synthesis
	if err := s.readDoc(sessionID, synthesisFile, &synthesis); err != nil {
		return nil, err
	}
	return &synthesis, nil
}

func (s *Store) writeDoc(sessionID, name string, v interface{}) error {
	dir := s.SessionDir(sessionID)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("store: create session dir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}

	final := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), fileMode); err != nil {
		return fmt.Errorf("store: chmod %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return fmt.Errorf("store: rename %s into place: %w", name, err)
	}
	return nil
}

func (s *Store) readDoc(sessionID, name string, v interface{}) error {
	return readJSON(filepath.Join(s.SessionDir(sessionID), name), v)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", path, err)
	}
	return nil
}
