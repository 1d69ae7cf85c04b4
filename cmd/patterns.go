package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/dotgrid/internal/encode"
	"github.com/cwbudde/dotgrid/internal/store"
	"github.com/spf13/cobra"
)

var (
	patternsDataDir string
	keepLast        int
	olderThanDays   int
	forceClean      bool
	exportPath      string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Manage stored patterns",
	Long: `Manage patterns persisted by the job server, including listing, inspecting,
re-exporting and cleaning old records. A record holds the seed and dot
centers, so its image can be rendered again exactly.`,
}

var listPatternsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored patterns",
	Long:  `Display all stored patterns with job ID, timestamp, size, pattern type, dot count and disk usage.`,
	RunE:  runListPatterns,
}

var showPatternCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show a stored pattern",
	Long:  `Print the configuration and statistics of a stored pattern, optionally re-rendering it with --export.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShowPattern,
}

var cleanPatternsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean old patterns",
	Long: `Delete old patterns based on retention policy.
You can keep only the newest N patterns or delete patterns older than N days.`,
	RunE: runCleanPatterns,
}

func init() {
	rootCmd.AddCommand(patternsCmd)

	patternsCmd.AddCommand(listPatternsCmd)
	patternsCmd.AddCommand(showPatternCmd)
	patternsCmd.AddCommand(cleanPatternsCmd)

	patternsCmd.PersistentFlags().StringVar(&patternsDataDir, "data-dir", "./data", "Base directory for pattern storage")

	showPatternCmd.Flags().StringVar(&exportPath, "export", "", "Re-render the pattern to this path (.png or .svg)")

	cleanPatternsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N patterns (0 = keep all)")
	cleanPatternsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete patterns older than N days (0 = no age limit)")
	cleanPatternsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func runListPatterns(cmd *cobra.Command, args []string) error {
	patternStore, err := store.NewFSStore(patternsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create pattern store: %w", err)
	}

	infos, err := patternStore.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list patterns: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No patterns found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tTIMESTAMP\tSIZE\tPATTERN\tRADIUS\tSPACING\tDOTS\tDISK")
	fmt.Fprintln(w, "------\t---------\t----\t-------\t------\t-------\t----\t----")

	for _, info := range infos {
		size, err := getDirSize(patternStore.JobDir(info.JobID))
		sizeStr := "unknown"
		if err == nil {
			sizeStr = formatBytes(size)
		}

		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\t%d\t%d\t%d\t%s\n",
			shortID(info.JobID),
			info.Timestamp.Format("2006-01-02 15:04:05"),
			info.Width, info.Height,
			info.Pattern,
			info.Radius,
			info.Spacing,
			info.Dots,
			sizeStr,
		)
	}

	w.Flush()

	fmt.Printf("\nTotal patterns: %d\n", len(infos))
	return nil
}

func runShowPattern(cmd *cobra.Command, args []string) error {
	patternStore, err := store.NewFSStore(patternsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create pattern store: %w", err)
	}

	jobID := args[0]
	record, err := patternStore.LoadRecord(jobID)
	if err != nil {
		return err
	}

	fmt.Printf("Job: %s\n", record.JobID)
	fmt.Printf("Created: %s\n", record.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Size: %dx%d\n", record.Config.Width, record.Config.Height)
	fmt.Printf("  Pattern: %s\n", record.Config.Pattern)
	fmt.Printf("  Spacing: %d\n", record.Config.Spacing)
	fmt.Printf("  Radius: %d", record.Radius)
	if record.Config.Coverage > 0 {
		fmt.Printf(" (tuned for %.1f%% coverage)", record.Config.Coverage*100)
	}
	fmt.Println()
	fmt.Printf("  Seed: %d\n", record.Seed)
	fmt.Println()
	fmt.Println("Result:")
	fmt.Printf("  Dots: %d\n", record.Stats.Dots)
	fmt.Printf("  Coverage: %.2f%%\n", record.Stats.Coverage*100)
	fmt.Printf("  Elapsed: %s\n", time.Duration(record.Stats.ElapsedMS)*time.Millisecond)

	if exportPath == "" {
		return nil
	}

	res, err := record.Render()
	if err != nil {
		return fmt.Errorf("failed to render pattern: %w", err)
	}
	path, format, err := resolveOutput(exportPath, "", res.Params)
	if err != nil {
		return err
	}
	if err := encode.SaveFile(path, func(w io.Writer) error { return encode.Write(w, res, format) }); err != nil {
		return err
	}
	fmt.Printf("\nWrote %s\n", path)
	return nil
}

func runCleanPatterns(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return fmt.Errorf("must specify either --keep-last or --older-than")
	}

	patternStore, err := store.NewFSStore(patternsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create pattern store: %w", err)
	}

	infos, err := patternStore.ListRecords()
	if err != nil {
		return fmt.Errorf("failed to list patterns: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No patterns to clean.")
		return nil
	}

	toDelete := selectRecordsForDeletion(infos, keepLast, olderThanDays, time.Now())

	if len(toDelete) == 0 {
		fmt.Println("No patterns match deletion criteria.")
		return nil
	}

	fmt.Printf("Found %d pattern(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Printf("  - %s (%dx%d %s, %s)\n",
			shortID(info.JobID),
			info.Width, info.Height, info.Pattern,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}

	if !forceClean {
		fmt.Print("\nProceed with deletion? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	deleted := 0
	failed := 0
	for _, info := range toDelete {
		if err := patternStore.DeleteRecord(info.JobID); err != nil {
			slog.Error("Failed to delete pattern", "job_id", info.JobID, "error", err)
			failed++
		} else {
			slog.Info("Deleted pattern", "job_id", info.JobID)
			deleted++
		}
	}

	fmt.Printf("\nDeleted %d pattern(s), %d failed.\n", deleted, failed)
	return nil
}

// selectRecordsForDeletion applies the retention policy: records older than
// olderThanDays, plus everything beyond the newest keepLast. Zero disables a rule.
// The result is ordered oldest first.
func selectRecordsForDeletion(infos []store.RecordInfo, keepLast, olderThanDays int, now time.Time) []store.RecordInfo {
	sorted := make([]store.RecordInfo, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, k int) bool {
		return sorted[i].Timestamp.Before(sorted[k].Timestamp)
	})

	excess := 0
	if keepLast > 0 && len(sorted) > keepLast {
		excess = len(sorted) - keepLast
	}
	var cutoff time.Time
	if olderThanDays > 0 {
		cutoff = now.AddDate(0, 0, -olderThanDays)
	}

	var toDelete []store.RecordInfo
	for i, info := range sorted {
		if i < excess || (olderThanDays > 0 && info.Timestamp.Before(cutoff)) {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}

// shortID truncates a job ID for table display.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12] + "..."
	}
	return id
}

// getDirSize calculates the total size of a directory
func getDirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

// formatBytes formats bytes as human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
