package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/archive"
	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/output"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive old completed tasks",
	Long: `Copies the full event history of completed tasks older than the cutoff
into monthly rollup files and tags them with an archive event. The daily
logs are never pruned; archiving only adds.`,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().IntP("days", "d", 0, "days after completion before archiving (default from config)")
	archiveCmd.Flags().Bool("dry-run", false, "show what would be archived without doing it")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	if !cmd.Flags().Changed("days") {
		days = cfg.ArchiveDays
	}
	if days < 0 {
		return clierr.Newf(clierr.InvalidInput, "invalid --days %d (must be >= 0)", days)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	report, err := archive.New(ctx, cfg.Actor, cfg.BranchFallback).Run(days, dryRun)
	if err != nil {
		return err
	}

	if !dryRun && len(report.Tasks) > 0 {
		ctx.LogMutation("archive", fmt.Sprintf("archived %d tasks", len(report.Tasks)))
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, report)
	}
	if outputFormat() == output.FormatIDs {
		for _, id := range report.IDs() {
			output.Messagef(os.Stdout, "%s", id)
		}
		return nil
	}

	if len(report.Tasks) == 0 {
		output.Messagef(os.Stdout, "No tasks to archive.")
		return nil
	}

	if dryRun {
		output.Messagef(os.Stdout, "Would archive %d tasks:", len(report.Tasks))
		for _, t := range report.Tasks {
			output.Messagef(os.Stdout, "  %s - %s", t.ID, t.Title)
		}
		return nil
	}

	output.Messagef(os.Stdout, "Archived %d tasks.", len(report.Tasks))
	for _, m := range report.Months {
		output.Messagef(os.Stdout, "  %d tasks to archive/%s.jsonl", m.Count, m.Month)
	}
	return nil
}
