// Package persistence implements the atomic write-then-rename primitive
// used by checkpointing and workflow metadata output.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes data to targetPath such that, after a successful return,
// targetPath contains exactly data, or it contains its pre-call contents;
// intermediate states are never observable to a concurrent reader.
//
// Realized as: write to "{targetPath}.tmp", back up an existing target to
// "{targetPath}.bak", rename the tmp file over target, then remove the
// backup. Parent directories are created on demand.
func Save(data []byte, targetPath string) error {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("persistence: create directory %s: %w", dir, err)
	}

	tmpPath := targetPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("persistence: write temp file %s: %w", tmpPath, err)
	}

	bakPath := targetPath + ".bak"
	if existing, err := os.ReadFile(targetPath); err == nil {
		if err := os.WriteFile(bakPath, existing, 0o644); err != nil {
			os.Remove(tmpPath) //nolint:errcheck
			return fmt.Errorf("persistence: write backup file %s: %w", bakPath, err)
		}
	} else if !os.IsNotExist(err) {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("persistence: read existing target %s: %w", targetPath, err)
	}

	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath) //nolint:errcheck
		return fmt.Errorf("persistence: rename %s to %s: %w", tmpPath, targetPath, err)
	}

	if err := os.Remove(bakPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("persistence: remove backup file %s: %w", bakPath, err)
	}

	return nil
}
