package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/jsphweid/fingerbot/service"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gattCmd)
}

var gattCmd = &cobra.Command{
	Use:   "gatt",
	Short: "Runs the BLE peripheral",
	Long: `Advertises the file transfer and playback services and serves them
until interrupted. Needs exclusive access to the HCI device, so stop
bluetoothd and run as root or with CAP_NET_ADMIN.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := NewApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		return service.ServeGATT(ctx, cfg.DeviceName,
			service.NewFileTransfer(app.Ingest),
			service.NewPlayAudio(app.Controller),
		)
	},
}
