package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/careboard/internal/model"
	"github.com/nhle/careboard/internal/store"
)

var (
	activityLimit int
	activityType  string
	activitySince time.Duration
	activityPrune time.Duration
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "List recent notifications from the local activity log",
	RunE:  runActivity,
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 50, "maximum number of entries")
	activityCmd.Flags().StringVar(&activityType, "type", "", "only show info, success or error entries")
	activityCmd.Flags().DurationVar(&activitySince, "since", 0, "only show entries newer than this (e.g. 24h)")
	activityCmd.Flags().DurationVar(&activityPrune, "prune", 0, "delete entries older than this instead of listing")
}

func runActivity(cmd *cobra.Command, args []string) error {
	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()

	if e.activity == nil {
		return fmt.Errorf("activity log is disabled (activity.db_path is empty or unusable)")
	}

	if activityPrune > 0 {
		n, err := e.activity.PruneActivity(cmd.Context(), time.Now().Add(-activityPrune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries.\n", n)
		return nil
	}

	filter := store.ActivityFilter{Limit: activityLimit}
	if activityType != "" {
		t := model.NotificationType(activityType)
		switch t {
		case model.NotificationInfo, model.NotificationSuccess, model.NotificationError:
		default:
			return fmt.Errorf("unknown type %q", activityType)
		}
		filter.Type = &t
	}
	if activitySince > 0 {
		since := time.Now().Add(-activitySince)
		filter.Since = &since
	}

	entries, err := e.activity.GetActivity(cmd.Context(), filter)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No activity.")
		return nil
	}
	for _, a := range entries {
		fmt.Fprintf(out, "%s  %-7s  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"), a.Type, a.Message)
	}
	return nil
}
