package cmd

import (
	"fmt"

	"github.com/jsphweid/fingerbot/score"
	"github.com/jsphweid/fingerbot/util"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Prints the decoded schedule of a score",
	Long:  `Decodes a .mid, .musicxml or .mxl file and prints each note group.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspect(args[0])
	},
}

func inspect(path string) error {
	schedule, err := score.NewDecoder(afero.NewOsFs()).Decode(path)
	if err != nil {
		return err
	}

	widest := 0
	for _, g := range schedule.Groups {
		fmt.Printf("%9.3f ", g.Timestamp)
		for _, n := range g.Events {
			fmt.Printf(" %s%d(%.3f)", n.Name, n.Octave, n.Duration)
		}
		fmt.Println()
		widest = util.Max(widest, len(g.Events))
	}
	fmt.Printf("groups: %d notes: %d widest: %d end: %.3f\n",
		schedule.Len(), schedule.NumEvents(), widest, schedule.End())
	return nil
}
