// Package ingest receives files over a write characteristic. Each client
// streams one file at a time: a FILENAME: marker opens it, every following
// write is appended, and EOF closes it. The SHA-1 of the latest chunk can be
// read back so the sender can verify each chunk as it goes.
package ingest

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/constants"
	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/storage"
	"github.com/spf13/afero"
)

var log = logging.Logger("ingest")

type session struct {
	mu   sync.Mutex
	name string
	file afero.File
}

type Manager struct {
	lib *storage.Library

	mu       sync.Mutex
	sessions map[string]*session

	sumMu        sync.Mutex
	lastChecksum []byte
}

func NewManager(lib *storage.Library) *Manager {
	return &Manager{
		lib:      lib,
		sessions: make(map[string]*session),
	}
}

// Handle routes one raw characteristic write. Only chunk writes return a
// checksum.
func (m *Manager) Handle(clientID string, payload []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(payload, []byte(constants.FilenamePrefix)):
		return nil, m.Begin(clientID, string(payload[len(constants.FilenamePrefix):]))
	case bytes.Equal(payload, []byte(constants.EOFMarker)):
		m.End(clientID)
		return nil, nil
	default:
		return m.WriteChunk(clientID, payload)
	}
}

// Begin opens a fresh file for clientID, closing any session the client
// already had.
func (m *Manager) Begin(clientID, rawFilename string) error {
	name, err := storage.SanitizeName(rawFilename)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.sessions[clientID]; ok {
		log.Warnw("replacing unfinished transfer", "client", clientID, "file", prev.name)
		prev.close()
		delete(m.sessions, clientID)
	}

	f, err := m.lib.Create(name)
	if err != nil {
		return err
	}
	m.sessions[clientID] = &session{name: name, file: f}
	log.Infow("receiving file", "client", clientID, "raw", rawFilename, "path", m.lib.Path(name))
	return nil
}

// WriteChunk appends chunk to the client's open file and returns the SHA-1
// of the chunk alone.
func (m *Manager) WriteChunk(clientID string, chunk []byte) ([]byte, error) {
	m.mu.Lock()
	s, ok := m.sessions[clientID]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, clientID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		// closed by a concurrent Begin or End
		return nil, fmt.Errorf("%w: %s", model.ErrSessionNotFound, clientID)
	}
	if _, err := s.file.Write(chunk); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", model.ErrIO, s.name, err)
	}
	if err := s.file.Sync(); err != nil {
		return nil, fmt.Errorf("%w: sync %s: %v", model.ErrIO, s.name, err)
	}

	sum := sha1.Sum(chunk)
	m.setChecksum(sum[:])
	log.Debugw("wrote chunk", "client", clientID, "bytes", len(chunk), "sha1", fmt.Sprintf("%x", sum))
	return sum[:], nil
}

// End closes the client's session if there is one and clears the checksum.
func (m *Manager) End(clientID string) {
	m.mu.Lock()
	s, ok := m.sessions[clientID]
	delete(m.sessions, clientID)
	m.mu.Unlock()

	if ok {
		s.close()
		m.lib.Invalidate()
		log.Infow("completed file transfer", "client", clientID, "file", s.name)
	}
	m.setChecksum([]byte{})
}

// LastChecksum is the digest of the most recent chunk from any client, or
// empty.
func (m *Manager) LastChecksum() []byte {
	m.sumMu.Lock()
	defer m.sumMu.Unlock()
	return append([]byte{}, m.lastChecksum...)
}

// Open reports whether clientID has a transfer in progress.
func (m *Manager) Open(clientID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[clientID]
	return ok
}

func (m *Manager) setChecksum(sum []byte) {
	m.sumMu.Lock()
	m.lastChecksum = sum
	m.sumMu.Unlock()
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	if err := s.file.Close(); err != nil {
		log.Warnw("closing upload", "file", s.name, "err", err)
	}
	s.file = nil
}
