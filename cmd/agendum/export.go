package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"agendum/internal/schedule"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
)

type exportSnapshot struct {
	SnapshotID string            `json:"snapshot_id"`
	ExportedAt string            `json:"exported_at"`
	Count      int               `json:"count"`
	Schedules  []schedule.Record `json:"schedules"`
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all schedules to a JSON snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		db, schedules, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := schedules.ListAll(cmd.Context())
		if err != nil {
			return err
		}

		snapshot := exportSnapshot{
			SnapshotID: ulid.Make().String(),
			ExportedAt: time.Now().UTC().Format(time.RFC3339),
			Count:      len(records),
			Schedules:  records,
		}

		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}

		if err := atomic.WriteFile(out, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}

		fmt.Printf("Exported %d schedule(s) to %s (snapshot %s)\n", snapshot.Count, out, snapshot.SnapshotID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out", "o", "schedules-export.json", "output file path")
}
