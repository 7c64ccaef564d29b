package datafetch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

var ErrInsufficientSpace = errors.New("insufficient disk space")

// CheckFreeSpace fails when the filesystem holding path has fewer than
// minBytes free. A zero minimum skips the check.
func CheckFreeSpace(path string, minBytes uint64) error {
	if minBytes == 0 {
		return nil
	}
	probe := existingAncestor(path)
	usage, err := disk.Usage(probe)
	if err != nil {
		return fmt.Errorf("disk usage %s: %w", probe, err)
	}
	if usage.Free < minBytes {
		return fmt.Errorf("%w: %s has %d MB free, need %d MB",
			ErrInsufficientSpace, probe, usage.Free>>20, minBytes>>20)
	}
	return nil
}

func existingAncestor(path string) string {
	cur := filepath.Clean(path)
	for {
		if _, err := os.Stat(cur); err == nil {
			return cur
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return cur
		}
		cur = parent
	}
}
