package cmd

import (
	"os"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/state"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorted by creation time.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringP("status", "s", "open", "status filter: open, complete, or all")
	listCmd.Flags().StringP("assignee", "a", "", "filter by assignee")
	listCmd.Flags().StringP("tag", "t", "", "filter by tag")
	listCmd.Flags().StringP("priority", "p", "", "filter by priority")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	statusFilter, _ := cmd.Flags().GetString("status")
	assignee, _ := cmd.Flags().GetString("assignee")
	tag, _ := cmd.Flags().GetString("tag")
	priority, _ := cmd.Flags().GetString("priority")

	switch statusFilter {
	case "open", "complete", "all":
	default:
		return clierr.Newf(clierr.InvalidInput, "invalid --status %q (expected open, complete, or all)", statusFilter)
	}

	ctx, err := discoverRepo()
	if err != nil {
		return err
	}

	st, err := state.LoadOrMaterialize(ctx)
	if err != nil {
		return err
	}

	var tasks []*state.Task
	for _, t := range st.Tasks {
		if statusFilter == "open" && t.Status != state.StatusOpen {
			continue
		}
		if statusFilter == "complete" && t.Status != state.StatusComplete {
			continue
		}
		if assignee != "" && t.Assignee != assignee {
			continue
		}
		if tag != "" && !slices.Contains(t.Tags, tag) {
			continue
		}
		if priority != "" && t.Priority != priority {
			continue
		}
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Created.Equal(tasks[j].Created) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].Created.Before(tasks[j].Created)
	})

	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []*state.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	case output.FormatIDs:
		for _, t := range tasks {
			output.Messagef(os.Stdout, "%s", t.ID)
		}
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
