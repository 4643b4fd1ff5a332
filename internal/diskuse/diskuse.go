package diskuse

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/disk"
)

// Size pairs a raw byte count with its best-fit IEC rendering.
type Size struct {
	Value float64 // scaled magnitude, always < 1024
	Unit  string  // "bytes", "KiB", ... "YiB"
	Bytes int64   // the original count
}

func (s Size) String() string {
	return fmt.Sprintf("%.2f %s", s.Value, s.Unit)
}

var units = []string{"bytes", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// BestUnit scales a byte count to the largest binary-prefix unit that keeps
// the magnitude below 1024. The selection is a display concern only; the raw
// count is preserved in the result.
func BestUnit(bytes int64) Size {
	v := math.Abs(float64(bytes))
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return Size{Value: v, Unit: units[i], Bytes: bytes}
}

// PathInfo reports the on-disk size of a file or directory tree and the
// number of non-directory entries under it. Directory entry sizes are
// included, as is the size of path itself. Any read error during the
// traversal is returned; nothing is silently skipped.
func PathInfo(path string) (int64, int, error) {
	root, err := os.Lstat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("stat %s: %w", path, err)
	}

	size := root.Size()
	count := 0
	if !root.IsDir() {
		return size, count, nil
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if p == path {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		size += info.Size()
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("walking %s: %w", path, err)
	}
	return size, count, nil
}

// FreeSpace reports the free bytes on the filesystem holding path.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("disk usage for %s: %w", path, err)
	}
	return usage.Free, nil
}
