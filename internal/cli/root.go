// Package cli implements the interview-invite command line.
package cli

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X .../internal/cli.version=..."
var version = "dev"

var (
	configPath string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "interview-invite",
	Short: "Generate and send interview invitations",
	Long: `Interview Invite Agent picks a candidate from a spreadsheet, drafts an interview
invitation with a text generation service and sends it by email.

Running without a subcommand opens the desktop wizard.`,
	SilenceUsage: true,
	RunE:         runGUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the user config directory)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with credentials")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
