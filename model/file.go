package model

import "time"

type StoredFile struct {
	Name    string
	ModTime time.Time
	Size    int64
}
