package model

import "errors"

var (
	ErrSessionNotFound   = errors.New("no open file session for client")
	ErrInvalidFilename   = errors.New("invalid filename")
	ErrUnsupportedFormat = errors.New("unsupported score format")
	ErrDecode            = errors.New("could not decode score")
	ErrFileNotFound      = errors.New("file not found")
	ErrFileInUse         = errors.New("file is in use by playback")
	ErrNotPlaying        = errors.New("no active playback")
	ErrIO                = errors.New("storage i/o failure")
)
