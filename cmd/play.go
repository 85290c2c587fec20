package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsphweid/fingerbot/model"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <name[:seconds]>",
	Short: "Plays a stored file on the motors",
	Long: `Plays a file from the storage directory, optionally starting at an
offset in seconds, and exits when it finishes. Interrupting stops playback.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := NewApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		finished := make(chan model.PlaybackStatus, 1)
		app.Scheduler.OnChange(func(st model.PlaybackStatus) {
			if st.State == model.Completed || st.State == model.Cancelled {
				select {
				case finished <- st:
				default:
				}
			}
		})

		if err := app.Controller.Play(args[0]); err != nil {
			return err
		}
		select {
		case st := <-finished:
			fmt.Printf("%s (%s)\n", st.State, st.RunID)
		case <-ctx.Done():
			fmt.Println("interrupted")
		}
		return nil
	},
}
