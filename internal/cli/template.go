package cli

import (
	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-invite-agent/internal/directory"
)

var templateCmd = &cobra.Command{
	Use:   "template <path>",
	Short: "Write a starter candidates workbook",
	Long: `Write an .xlsx workbook with the Name, Email and Position columns and a few sample
rows. Point candidates_file (or CANDIDATES_FILE) at it after filling it in.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplate,
}

func init() {
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	path, err := directory.WriteTemplate(args[0], directory.SampleRecords())
	if err != nil {
		return err
	}
	cmd.Printf("Template written to %s\n", path)
	return nil
}
