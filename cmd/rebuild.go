package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/index"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/repo"
	"github.com/spoolhq/spool/internal/state"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the derived caches",
	Long: `Recomputes the state and index snapshots from the event log. The caches
are pure functions of the log; rebuilding is always safe.`,
	RunE: runRebuild,
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(_ *cobra.Command, _ []string) error {
	ctx, err := discoverRepo()
	if err != nil {
		return err
	}

	idx, err := index.Build(ctx)
	if err != nil {
		return err
	}
	if err := index.Write(ctx, idx); err != nil {
		return err
	}

	st, err := state.Materialize(ctx)
	if err != nil {
		return err
	}
	if err := state.WriteSnapshot(ctx, st); err != nil {
		return err
	}

	ctx.LogMutation("rebuild", fmt.Sprintf("state=%d index=%d", len(st.Tasks), len(idx.Tasks)))

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]int{
			"state_tasks": len(st.Tasks),
			"index_tasks": len(idx.Tasks),
		})
	}

	output.Messagef(os.Stdout, "Rebuilt %s (%d tasks)", repo.IndexFileName, len(idx.Tasks))
	output.Messagef(os.Stdout, "Rebuilt %s (%d tasks)", repo.StateFileName, len(st.Tasks))
	return nil
}
