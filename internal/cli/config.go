package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/nhle/careboard/internal/model"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	RunE:  runConfigShow,
}

var configSetURLCmd = &cobra.Command{
	Use:   "set-url <base-url>",
	Short: "Set the API base URL, e.g. https://care.example.org/api",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetURL,
}

var configSetPolicyCmd = &cobra.Command{
	Use:   "set-load-policy <silent|notify>",
	Short: "Choose whether failed board loads show a notification",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetPolicy,
}

func init() {
	configCmd.AddCommand(configSetURLCmd)
	configCmd.AddCommand(configSetPolicyCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config file:               %s\n", configPath)
	fmt.Fprintf(out, "api.base_url:              %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "api.timeout_sec:           %d\n", cfg.API.TimeoutSec)
	fmt.Fprintf(out, "board.load_failure_policy: %s\n", cfg.Board.LoadFailurePolicy)
	fmt.Fprintf(out, "notifications.ttl_ms:      %d\n", cfg.Notifications.TTLMillis)
	fmt.Fprintf(out, "activity.db_path:          %s\n", cfg.Activity.DBPath)
	fmt.Fprintf(out, "log.file:                  %s\n", cfg.Log.File)
	fmt.Fprintf(out, "display.theme:             %s\n", cfg.Display.Theme)
	return nil
}

func runConfigSetURL(cmd *cobra.Command, args []string) error {
	u, err := url.Parse(args[0])
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid URL %q", args[0])
	}
	return updateConfig(cmd, func(cfg *model.AppConfig) {
		cfg.API.BaseURL = args[0]
	})
}

func runConfigSetPolicy(cmd *cobra.Command, args []string) error {
	return updateConfig(cmd, func(cfg *model.AppConfig) {
		cfg.Board.LoadFailurePolicy = args[0]
	})
}

func updateConfig(cmd *cobra.Command, change func(*model.AppConfig)) error {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return err
	}
	change(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := model.SaveConfig(configPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", configPath)
	return nil
}
