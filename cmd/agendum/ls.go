package main

import (
	"fmt"

	"agendum/internal/schedule"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored schedules",
	Long:  `Display schedules in a date window. Range endpoints accept YYYY-MM-DD, REL_DAYS:+N, or WEEKDAY:<label>[:THIS|NEXT].`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		until, _ := cmd.Flags().GetString("until")
		topic, _ := cmd.Flags().GetString("topic")
		limit, _ := cmd.Flags().GetInt("limit")
		anchorNow, _ := cmd.Flags().GetString("anchor")

		db, schedules, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		queries := schedule.NewQueryService(schedules, nil)
		result, err := queries.Query(cmd.Context(), schedule.QueryRequest{
			Intent:    schedule.IntentList,
			Topic:     topic,
			Range:     schedule.QueryRange{Kind: schedule.RangeBetween, Start: from, End: until},
			Limit:     limit,
			AnchorNow: anchorNow,
		})
		if err != nil {
			return err
		}

		if len(result.Items) == 0 {
			fmt.Printf("No schedules between %s and %s.\n", result.Start, result.End)
			return nil
		}

		fmt.Println(renderScheduleTable(result.Items))
		fmt.Printf("\n%d schedule(s) between %s and %s\n", result.Count, result.Start, result.End)
		return nil
	},
}

func renderScheduleTable(items []schedule.Record) string {
	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")

	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Align(lipgloss.Center).
		Padding(0, 1)
	rowStyle := lipgloss.NewStyle().
		Foreground(gray).
		Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return rowStyle
		}).
		Headers("ID", "DATE", "DAY", "TIME", "CONTENT")

	for _, rec := range items {
		t.Row(
			fmt.Sprintf("%d", rec.ID),
			rec.Date,
			rec.DayOfWeek,
			orNone(rec.Time),
			truncateString(rec.Content, 40),
		)
	}

	return t.String()
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().String("from", "REL_DAYS:0", "range start")
	lsCmd.Flags().String("until", "REL_DAYS:+7", "range end")
	lsCmd.Flags().String("topic", "", "content keyword filter")
	lsCmd.Flags().Int("limit", 0, "maximum rows (default 20)")
	lsCmd.Flags().String("anchor", "", "anchor time ISO-8601 (defaults to now)")
}
