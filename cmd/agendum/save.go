package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"agendum/internal/config"
	"agendum/internal/dedup"
	"agendum/internal/schedule"
	"agendum/internal/temporal"

	"github.com/spf13/cobra"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a schedule entry",
	Long:  `Resolve and persist one schedule entry. Pass --date for an absolute date, or --date-token with a JSON token for a relative expression.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, _ := cmd.Flags().GetString("content")
		date, _ := cmd.Flags().GetString("date")
		timeOfDay, _ := cmd.Flags().GetString("time")
		anchorNow, _ := cmd.Flags().GetString("anchor")
		idemKey, _ := cmd.Flags().GetString("key")
		dateTokenJSON, _ := cmd.Flags().GetString("date-token")
		timeTokenJSON, _ := cmd.Flags().GetString("time-token")

		req := schedule.SaveRequest{
			Content:        content,
			AnchorNow:      anchorNow,
			IdempotencyKey: idemKey,
		}

		if dateTokenJSON != "" {
			var dateToken temporal.DateToken
			if err := json.Unmarshal([]byte(dateTokenJSON), &dateToken); err != nil {
				return fmt.Errorf("parse --date-token: %w", err)
			}
			req.When = schedule.When{Mode: schedule.ModeToken, DateToken: &dateToken}
			if timeTokenJSON != "" {
				var timeToken temporal.TimeToken
				if err := json.Unmarshal([]byte(timeTokenJSON), &timeToken); err != nil {
					return fmt.Errorf("parse --time-token: %w", err)
				}
				req.When.TimeToken = &timeToken
			}
		} else {
			req.When = schedule.When{Mode: schedule.ModeAbsolute, Date: date, Time: timeOfDay}
		}

		ttl, err := config.DurationOrDefault(cfg.Dedup.TTL, config.DefaultDedupTTL)
		if err != nil {
			return err
		}

		db, schedules, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		assembler := schedule.NewAssembler(schedules, dedup.NewCache(ttl), nil)
		result, err := assembler.Save(cmd.Context(), req)
		if err != nil {
			var dup *schedule.DuplicateError
			if errors.As(err, &dup) {
				fmt.Printf("Duplicate request within the dedup window; nothing saved.\nkey=%s date=%s time=%s\n",
					schedule.ShortKey(dup.Key), dup.Date, orNone(dup.Time))
				return nil
			}
			return err
		}

		fmt.Printf("Saved schedule #%d\n%s (%s) %s\n%s\nTotal stored: %d\n",
			result.Record.ID, result.Record.Date, result.Record.DayOfWeek,
			orNone(result.Record.Time), result.Record.Content, result.Total)
		return nil
	},
}

func orNone(timeOfDay string) string {
	if timeOfDay == "" {
		return "(no time)"
	}
	return timeOfDay
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringP("content", "c", "", "schedule content (required)")
	saveCmd.Flags().String("date", "", "absolute date YYYY-MM-DD")
	saveCmd.Flags().String("time", "", "absolute time HH:MM (optional)")
	saveCmd.Flags().String("date-token", "", `date token JSON, e.g. '{"type":"AFTER_N_DAY","n":3}'`)
	saveCmd.Flags().String("time-token", "", `time token JSON, e.g. '{"type":"SLOT","slot":"MORNING"}'`)
	saveCmd.Flags().String("anchor", "", "anchor time ISO-8601 (defaults to now)")
	saveCmd.Flags().String("key", "", "idempotency key (optional)")
}
