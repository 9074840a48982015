package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/event"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays full details of a single task, optionally with its raw event history.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Bool("events", false, "show raw event history")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	showEvents, _ := cmd.Flags().GetBool("events")

	ctx, err := discoverRepo()
	if err != nil {
		return err
	}

	st, err := state.LoadOrMaterialize(ctx)
	if err != nil {
		return err
	}

	t, ok := st.Tasks[id]
	if !ok {
		return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
			WithDetails(map[string]any{"id": id})
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.TaskDetail(os.Stdout, t)

	if showEvents {
		history, err := taskHistory(ctx, id)
		if err != nil {
			return err
		}
		output.EventHistory(os.Stdout, history)
	}

	return nil
}

// taskHistory collects every event for one task from the active logs,
// preserving discovery order.
func taskHistory(ctx *repo.Context, id string) ([]event.Event, error) {
	files, err := ctx.EventFiles()
	if err != nil {
		return nil, err
	}

	var history []event.Event
	for _, path := range files {
		events, err := event.ReadFile(path)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			if ev.ID == id {
				history = append(history, ev)
			}
		}
	}
	return history, nil
}
