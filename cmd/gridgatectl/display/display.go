// Package display provides output formatting and display functions for gridgatectl.
//
// This package handles all user-facing output formatting including table and JSON
// output for tasks, execution results, policy, rate limiter state, and snapshots.
// It provides consistent formatting across all gridgatectl commands with support
// for verbose mode, different output formats, and proper error handling.
//
// The display functions handle:
// - Daemon health and version information
// - Task listings with lifecycle status and age
// - Per-batch execution results with operation summaries and diff reports
// - Policy configuration rendering
// - Rate limiter bucket state with throttle indicators
// - Snapshot record listings
//
// All display functions respect global configuration for output format, verbosity,
// and other user preferences while maintaining clean separation from business logic.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/client"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/config"
	"github.com/gridgate-dev/gridgate/cmd/gridgatectl/utils"
	"github.com/gridgate-dev/gridgate/internal/logging"
	internalutils "github.com/gridgate-dev/gridgate/internal/utils"
)

// printJSON writes any value as indented JSON to stdout with error logging.
func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logging.Error("Failed to encode JSON: %v", err)
		fmt.Println("Error encoding JSON output")
	}
}

// DisplayHealth displays daemon health, version, and uptime information in
// tabular or JSON format for daemon readiness checks.
func DisplayHealth(health client.HealthInfo) {
	if config.Global.Output == "json" {
		printJSON(health)
		return
	}

	fmt.Printf("Daemon Information:\n")
	fmt.Printf("  Status:   %s\n", health.Status)
	fmt.Printf("  Version:  %s\n", health.Version)
	fmt.Printf("  Uptime:   %s\n", health.Uptime)
	fmt.Printf("  Checked:  %s\n", health.Timestamp.Format(time.RFC3339))
}

// DisplayTasks displays tracked pipeline runs in tabular or JSON format with
// store counters. Handles empty result sets gracefully and sorts tasks by
// creation time (most recent first) for operational convenience.
func DisplayTasks(list client.TaskListResponse) {
	if config.Global.Output == "json" {
		printJSON(list)
		return
	}

	if len(list.Tasks) == 0 {
		fmt.Println("No tasks found")
		return
	}

	// Sort tasks by creation time (most recent first)
	tasks := list.Tasks
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	if config.Global.Verbose {
		fmt.Fprintln(w, "ID\tDOCUMENT\tSTATUS\tCREATED\tUPDATED\tERROR")
	} else {
		fmt.Fprintln(w, "ID\tDOCUMENT\tSTATUS\tAGE")
	}

	for _, task := range tasks {
		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				internalutils.TruncateIDSafe(task.ID), task.DocumentID, task.Status,
				humanize.Time(task.CreatedAt), humanize.Time(task.UpdatedAt), task.Error)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				internalutils.TruncateIDSafe(task.ID), task.DocumentID, task.Status,
				utils.FormatDuration(time.Since(task.CreatedAt)))
		}
	}
	w.Flush()

	fmt.Printf("\nStore: %d live, %s created, %s completed, %s failed, %s swept\n",
		list.Stats.Tasks,
		humanize.Comma(list.Stats.Created), humanize.Comma(list.Stats.Completed),
		humanize.Comma(list.Stats.Failed), humanize.Comma(list.Stats.Swept))
}

// DisplayTask displays one task in detail including its terminal result
// payload. Result payloads are decoded into execution results when possible
// so aborted and succeeded runs render the same per-batch summary.
func DisplayTask(task client.Task) {
	if config.Global.Output == "json" {
		printJSON(task)
		return
	}

	fmt.Printf("Task Information:\n")
	fmt.Printf("  ID:       %s\n", task.ID)
	fmt.Printf("  Document: %s\n", task.DocumentID)
	fmt.Printf("  Status:   %s\n", task.Status)
	fmt.Printf("  Created:  %s (%s)\n", task.CreatedAt.Format(time.RFC3339), humanize.Time(task.CreatedAt))
	fmt.Printf("  Updated:  %s (%s)\n", task.UpdatedAt.Format(time.RFC3339), humanize.Time(task.UpdatedAt))
	if task.Error != "" {
		fmt.Printf("  Error:    %s\n", task.Error)
	}

	if len(task.Result) == 0 {
		return
	}

	var results []client.ExecutionResult
	if err := json.Unmarshal(task.Result, &results); err != nil {
		// Unknown result shape from a newer daemon: show it raw
		fmt.Printf("\nResult:\n%s\n", string(task.Result))
		return
	}

	fmt.Println()
	DisplayResults(results)
}

// DisplayResults displays per-batch execution results in tabular or JSON
// format including operation summaries, snapshot IDs, and change counts.
// Failed and skipped batches are annotated so operators can see exactly
// where a same-document lane stopped.
func DisplayResults(results []client.ExecutionResult) {
	if config.Global.Output == "json" {
		printJSON(results)
		return
	}

	if len(results) == 0 {
		fmt.Println("No batches executed")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if config.Global.Verbose {
		fmt.Fprintln(w, "DOCUMENT\tBATCH\tREQUESTS\tPAYLOAD\tSTATUS\tSNAPSHOT\tCHANGES\tSUMMARY")
	} else {
		fmt.Fprintln(w, "DOCUMENT\tBATCH\tREQUESTS\tSTATUS\tSNAPSHOT\tCHANGES\tSUMMARY")
	}

	for _, res := range results {
		status := "ok"
		summary := ""
		switch {
		case res.Skipped:
			status = "skipped"
			summary = "earlier batch for this document failed"
		case res.Error != nil:
			status = res.Error.Code
			summary = res.Error.Message
		case res.DryRun:
			status = "dry-run"
		}
		if res.Response != nil && summary == "" {
			summary = res.Response.Summary
		}

		snapshotID := "-"
		if res.SnapshotID != "" {
			snapshotID = internalutils.TruncateIDSafe(res.SnapshotID)
		}

		changes := "-"
		if res.Diff != nil {
			changes = fmt.Sprintf("%d", len(res.Diff.Changes))
			if res.Diff.Truncated {
				changes += "+"
			}
		}

		if config.Global.Verbose {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
				res.DocumentID, res.BatchIndex, res.RequestCount,
				humanize.Bytes(uint64(res.Payload.SerializedBytes)), status, snapshotID, changes, summary)
		} else {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
				res.DocumentID, res.BatchIndex, res.RequestCount, status, snapshotID, changes, summary)
		}
	}
	w.Flush()

	// Show per-change detail in verbose mode
	if config.Global.Verbose {
		for _, res := range results {
			if res.Diff == nil || len(res.Diff.Changes) == 0 {
				continue
			}
			fmt.Printf("\nChanges for %s (batch %d, %s tier):\n", res.DocumentID, res.BatchIndex, res.Diff.Tier)
			cw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(cw, "KIND\tSHEET\tROW\tCOL\tBEFORE\tAFTER")
			for _, ch := range res.Diff.Changes {
				fmt.Fprintf(cw, "%s\t%d\t%d\t%d\t%s\t%s\n",
					ch.Kind, ch.SheetID, ch.Row, ch.Column, ch.Before, ch.After)
			}
			cw.Flush()
		}
	}
}

// DisplayPolicy displays the active safety policy configuration. The policy
// arrives as a generic document so fields added by newer daemons still render.
func DisplayPolicy(policy map[string]any) {
	if config.Global.Output == "json" {
		printJSON(policy)
		return
	}

	// Sort keys for stable output
	keys := make([]string, 0, len(policy))
	for k := range policy {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("Active Policy:\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()
	for _, k := range keys {
		fmt.Fprintf(w, "  %s\t%v\n", k, policy[k])
	}
}

// DisplayLimiter displays per-class rate limiter bucket state with token
// balances and throttle indicators for pacing visibility.
func DisplayLimiter(state client.LimiterState) {
	if config.Global.Output == "json" {
		printJSON(state)
		return
	}

	mode := "normal"
	if state.Throttled {
		mode = "throttled"
	}
	fmt.Printf("Rate Limiter: %s\n\n", mode)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "CLASS\tTOKENS\tCAPACITY\tRATE/S\tTHROTTLED\tUNTIL")
	for _, b := range state.Buckets {
		until := "-"
		if b.Throttled && !b.ThrottledUntil.IsZero() {
			until = humanize.Time(b.ThrottledUntil)
		}
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.2f\t%t\t%s\n",
			b.Class, b.Tokens, b.Capacity, b.RefillRate, b.Throttled, until)
	}
}

// DisplaySnapshots displays pre-mutation snapshot records for one document
// sorted by creation time (most recent first).
func DisplaySnapshots(snapshots []client.SnapshotRecord) {
	if config.Global.Output == "json" {
		if snapshots == nil {
			fmt.Println("[]")
			return
		}
		printJSON(snapshots)
		return
	}

	if len(snapshots) == 0 {
		fmt.Println("No snapshots found")
		return
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt.After(snapshots[j].CreatedAt)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tDOCUMENT\tCREATED\tCONTENT")
	for _, snap := range snapshots {
		content := "marker"
		if len(snap.Document) > 0 {
			content = humanize.Bytes(uint64(len(snap.Document)))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			internalutils.TruncateIDSafe(snap.ID), snap.DocumentID,
			humanize.Time(snap.CreatedAt), content)
	}
}

// DisplaySnapshot displays one snapshot record in detail.
func DisplaySnapshot(snap client.SnapshotRecord) {
	if config.Global.Output == "json" {
		printJSON(snap)
		return
	}

	fmt.Printf("Snapshot Information:\n")
	fmt.Printf("  ID:       %s\n", snap.ID)
	fmt.Printf("  Document: %s\n", snap.DocumentID)
	fmt.Printf("  Created:  %s (%s)\n", snap.CreatedAt.Format(time.RFC3339), humanize.Time(snap.CreatedAt))
	if len(snap.Document) > 0 {
		fmt.Printf("  Content:  %s captured\n", humanize.Bytes(uint64(len(snap.Document))))
	} else {
		fmt.Printf("  Content:  marker only\n")
	}
}
