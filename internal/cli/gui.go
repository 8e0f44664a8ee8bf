package cli

import (
	"github.com/spf13/cobra"

	"github.com/fmuoria/interview-invite-agent/internal/gui"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop wizard",
	RunE:  runGUI,
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

func runGUI(cmd *cobra.Command, _ []string) error {
	c, err := setup(cmd.Context(), cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer c.Close()

	gui.NewApp(c.wizard, c.cfg, c.configPath, c.log).Run()
	return nil
}
