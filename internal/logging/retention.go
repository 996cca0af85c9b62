package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneRunLogs removes per-run log files under logDir/runs that are older
// than retentionDays. keep names a run id whose log is never removed. A
// retentionDays value of 0 disables pruning. It returns the number of files
// removed.
func PruneRunLogs(logger *slog.Logger, logDir string, retentionDays int, keep string) int {
	if retentionDays <= 0 || strings.TrimSpace(logDir) == "" {
		return 0
	}
	dir := filepath.Dir(RunLogPath(logDir, "x"))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keepName := ""
	if keep != "" {
		keepName = filepath.Base(RunLogPath(logDir, keep))
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == keepName || filepath.Ext(name) != ".jsonl" {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		fullPath := filepath.Join(dir, name)
		if err := os.Remove(fullPath); err != nil {
			WarnWithContext(logger, "run log prune failed; file remains", "run_log_prune_failed",
				String("path", fullPath),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old run log remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("run log pruned",
				String("path", fullPath),
				String(FieldEventType, "run_log_pruned"),
			)
		}
	}
	return removed
}
