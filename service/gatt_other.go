//go:build !linux

package service

import (
	"context"
	"errors"
)

func ServeGATT(ctx context.Context, name string, ft *FileTransfer, pa *PlayAudio) error {
	return errors.New("the BLE peripheral is only supported on linux")
}
