package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/config"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/repo"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a spool repository",
	Long:  `Creates a .spool directory with events/ and archive/ subdirectories.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "repository name (defaults to current directory name)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		dir = "."
	}

	ctx, err := repo.Init(dir)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err == nil {
			name = filepath.Base(cwd)
		}
	}

	cfg := config.NewDefault(name)
	if err := cfg.Save(ctx.Root); err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":  "initialized",
			"root":    ctx.Root,
			"events":  ctx.EventsDir,
			"archive": ctx.ArchiveDir,
		})
	}

	output.Messagef(os.Stdout, "Created %s", ctx.Root)
	output.Messagef(os.Stdout, "  %s/  - daily event logs", filepath.Join(repo.DefaultDir, repo.EventsDirName))
	output.Messagef(os.Stdout, "  %s/ - monthly rollups", filepath.Join(repo.DefaultDir, repo.ArchiveDirName))
	output.Messagef(os.Stdout, "  derived caches (%s, %s) are gitignored", repo.StateFileName, repo.IndexFileName)
	return nil
}
