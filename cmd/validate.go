package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/spoolhq/spool/internal/clierr"
	"github.com/spoolhq/spool/internal/output"
	"github.com/spoolhq/spool/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the event log",
	Long: `Checks every event log line for structural problems and the materialized
state for dangling references. With --strict, any finding fails the command.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "fail on warnings too")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	strict, _ := cmd.Flags().GetBool("strict")

	ctx, err := discoverRepo()
	if err != nil {
		return err
	}

	res, err := validate.Run(ctx)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, res); err != nil {
			return err
		}
		return strictFailure(res, strict)
	}

	if res.Clean() {
		output.Messagef(os.Stdout, "Validation passed. No issues found.")
		return nil
	}

	if len(res.Errors) > 0 {
		output.Messagef(os.Stdout, "Errors (%d):", len(res.Errors))
		for _, e := range res.Errors {
			output.Messagef(os.Stdout, "  ERROR: %s", e)
		}
	}
	if len(res.Warnings) > 0 {
		output.Messagef(os.Stdout, "Warnings (%d):", len(res.Warnings))
		for _, w := range res.Warnings {
			output.Messagef(os.Stdout, "  WARN: %s", w)
		}
	}

	return strictFailure(res, strict)
}

// strictFailure escalates findings after the full report has been
// printed. This policy lives here at the CLI boundary; the validator
// itself never fails on findings.
func strictFailure(res *validate.Result, strict bool) error {
	if !strict {
		return nil
	}
	if n := len(res.Errors); n > 0 {
		return clierr.Newf(clierr.ValidationFailed, "validation failed with %d errors", n).
			WithDetails(map[string]any{"errors": n})
	}
	if n := len(res.Warnings); n > 0 {
		return clierr.Newf(clierr.ValidationFailed, "validation failed with %d warnings (--strict mode)", n).
			WithDetails(map[string]any{"warnings": n})
	}
	return nil
}
