// Package cli defines the Cobra commands for careboard. With no subcommand
// and a terminal attached it starts the interactive board.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/careboard/internal/model"
)

var (
	configPath string
	version    = "dev" // set via ldflags at build time
)

// reportedError marks a failure that was already shown to the user as a
// notification, so Execute only sets the exit code.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

var rootCmd = &cobra.Command{
	Use:   "careboard",
	Short: "Terminal client for care team task coordination",
	Long: `careboard signs you in to your organization's care coordination
service and shows its tasks as a To Do / In Progress / Completed / Handoff
board. Run it without a subcommand in a terminal for the interactive board.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !IsTTY() {
			return cmd.Help()
		}
		return runTUI()
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to the config file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(configCmd)
}
