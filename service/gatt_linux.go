//go:build linux

package service

import (
	"context"
	"fmt"

	"github.com/jsphweid/fingerbot/constants"
	"github.com/paypal/gatt"
)

// ServeGATT advertises both services under name and serves them until ctx
// is done. It takes exclusive control of the first HCI device.
func ServeGATT(ctx context.Context, name string, ft *FileTransfer, pa *PlayAudio) error {
	d, err := gatt.NewDevice(gatt.LnxMaxConnections(1), gatt.LnxDeviceID(-1, true))
	if err != nil {
		return fmt.Errorf("opening hci device: %w", err)
	}

	d.Handle(
		gatt.CentralConnected(func(c gatt.Central) {
			log.Infow("central connected", "client", c.ID())
		}),
		gatt.CentralDisconnected(func(c gatt.Central) {
			log.Infow("central disconnected", "client", c.ID())
			ft.Disconnected(c.ID())
		}),
	)

	fileSvc := newFileTransferService(ft)
	playSvc := newPlayAudioService(pa)

	ready := make(chan error, 1)
	fail := func(err error) {
		select {
		case ready <- err:
		default:
		}
	}
	err = d.Init(func(d gatt.Device, s gatt.State) {
		log.Infow("adapter state", "state", s.String())
		if s != gatt.StatePoweredOn {
			return
		}
		for _, svc := range []*gatt.Service{fileSvc, playSvc} {
			if err := d.AddService(svc); err != nil {
				fail(fmt.Errorf("adding service %s: %w", svc.UUID(), err))
				return
			}
		}
		if err := d.AdvertiseNameAndServices(name, []gatt.UUID{fileSvc.UUID(), playSvc.UUID()}); err != nil {
			fail(fmt.Errorf("advertising: %w", err))
			return
		}
		log.Infow("advertising", "name", name)
	})
	if err != nil {
		return fmt.Errorf("initializing hci device: %w", err)
	}

	select {
	case err := <-ready:
		d.StopAdvertising()
		return err
	case <-ctx.Done():
		d.StopAdvertising()
		return nil
	}
}

func newFileTransferService(ft *FileTransfer) *gatt.Service {
	s := gatt.NewService(gatt.MustParseUUID(constants.FileTransferServiceUUID))
	c := s.AddCharacteristic(gatt.MustParseUUID(constants.FileWriteCharUUID))
	c.HandleReadFunc(func(rsp gatt.ResponseWriter, req *gatt.ReadRequest) {
		writeRead(rsp, req, ft.Read())
	})
	c.HandleWriteFunc(func(r gatt.Request, data []byte) byte {
		return status(ft.Write(r.Central.ID(), data))
	})
	return s
}

func newPlayAudioService(pa *PlayAudio) *gatt.Service {
	s := gatt.NewService(gatt.MustParseUUID(constants.PlayAudioServiceUUID))

	s.AddCharacteristic(gatt.MustParseUUID(constants.ListFilesCharUUID)).
		HandleReadFunc(func(rsp gatt.ResponseWriter, req *gatt.ReadRequest) {
			writeRead(rsp, req, pa.ReadList())
		})

	writes := []struct {
		uuid string
		fn   func([]byte) error
	}{
		{constants.PlayAudioCharUUID, pa.WritePlay},
		{constants.DeleteFileCharUUID, pa.WriteDelete},
		{constants.PauseAudioCharUUID, pa.WritePause},
		{constants.ResumeAudioCharUUID, pa.WriteResume},
	}
	for _, w := range writes {
		fn := w.fn
		s.AddCharacteristic(gatt.MustParseUUID(w.uuid)).
			HandleWriteFunc(func(_ gatt.Request, data []byte) byte {
				return status(fn(data))
			})
	}
	return s
}

// writeRead serves one slice of a long read starting at the requested
// offset.
func writeRead(rsp gatt.ResponseWriter, req *gatt.ReadRequest, value []byte) {
	if req.Offset > len(value) {
		rsp.SetStatus(gatt.StatusInvalidOffset)
		return
	}
	value = value[req.Offset:]
	if req.Cap > 0 && len(value) > req.Cap {
		value = value[:req.Cap]
	}
	rsp.Write(value)
}

func status(err error) byte {
	if err != nil {
		return gatt.StatusUnexpectedError
	}
	return gatt.StatusSuccess
}
