// Package service exposes the device's two GATT services as plain
// characteristic handlers. The GATT binding and the bench HTTP mirror both
// call into these.
package service

import (
	"errors"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jsphweid/fingerbot/ingest"
	"github.com/jsphweid/fingerbot/model"
	"github.com/jsphweid/fingerbot/playback"
)

var log = logging.Logger("service")

// FileTransfer backs the file write characteristic.
type FileTransfer struct {
	ingest *ingest.Manager
}

func NewFileTransfer(m *ingest.Manager) *FileTransfer {
	return &FileTransfer{ingest: m}
}

// Write handles FILENAME:<name>, EOF, or a data chunk from clientID. An
// error means the write is rejected.
func (s *FileTransfer) Write(clientID string, value []byte) error {
	if _, err := s.ingest.Handle(clientID, value); err != nil {
		log.Warnw("file write rejected", "client", clientID, "bytes", len(value), "err", err)
		return err
	}
	return nil
}

// Read returns the last chunk checksum, or nothing.
func (s *FileTransfer) Read() []byte {
	return s.ingest.LastChecksum()
}

// Disconnected flags a transfer left open by a client that went away. The
// session is kept; the client may never come back.
func (s *FileTransfer) Disconnected(clientID string) {
	if s.ingest.Open(clientID) {
		log.Warnw("client disconnected mid-transfer, file left open", "client", clientID)
	}
}

// PlayAudio backs the list, play, delete, pause and resume characteristics.
type PlayAudio struct {
	ctl *playback.Controller
}

func NewPlayAudio(ctl *playback.Controller) *PlayAudio {
	return &PlayAudio{ctl: ctl}
}

func (s *PlayAudio) ReadList() []byte {
	list, err := s.ctl.ListFiles()
	if err != nil {
		log.Errorw("listing files", "err", err)
		return []byte("Error: " + err.Error())
	}
	return []byte(list)
}

func (s *PlayAudio) WritePlay(value []byte) error {
	err := s.ctl.Play(string(value))
	if err != nil {
		log.Warnw("play rejected", "command", string(value), "err", err)
	}
	return err
}

func (s *PlayAudio) WriteDelete(value []byte) error {
	err := s.ctl.Delete(strings.TrimSpace(string(value)))
	if err != nil {
		log.Warnw("delete rejected", "file", string(value), "err", err)
	}
	return err
}

// WritePause ignores the written value.
func (s *PlayAudio) WritePause(_ []byte) error {
	return s.ctl.Pause()
}

func (s *PlayAudio) WriteResume(_ []byte) error {
	err := s.ctl.Resume()
	if err != nil {
		log.Warnw("resume rejected", "err", err)
	}
	return err
}

func (s *PlayAudio) Status() model.PlaybackStatus {
	return s.ctl.Scheduler().Status()
}

// StatusCode maps the error taxonomy onto HTTP statuses.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, model.ErrSessionNotFound),
		errors.Is(err, model.ErrInvalidFilename),
		errors.Is(err, model.ErrUnsupportedFormat):
		return 400
	case errors.Is(err, model.ErrFileNotFound):
		return 404
	case errors.Is(err, model.ErrFileInUse):
		return 409
	case errors.Is(err, model.ErrDecode):
		return 422
	}
	return 500
}
