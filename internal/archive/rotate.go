// Package archive maintains dated compressed snapshots of a mirrored
// directory, keeping at most one snapshot per weekday.
package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// Result describes one completed rotation.
type Result struct {
	Created string
	Deleted []string
}

// Describe renders the rotation outcome as log lines.
func (r *Result) Describe() []string {
	lines := []string{"Created file:", "", r.Created}
	for _, old := range r.Deleted {
		lines = append(lines, "", "Deleted old file:", "", old)
	}
	return lines
}

// Rotate creates a tar.gz snapshot of dir inside workDir and removes any
// pre-existing snapshot of the same directory whose filename carries the
// same weekday abbreviation. The stale snapshots are identified before the
// new one is written and deleted only after it is complete, so a failure
// mid-creation never leaves that weekday without a snapshot.
func Rotate(dir, workDir string, now time.Time) (*Result, error) {
	base := filepath.Base(filepath.Clean(dir))
	weekday := now.Format("Mon")

	stale, err := filepath.Glob(filepath.Join(workDir, base+"*"+weekday+".tar.gz"))
	if err != nil {
		return nil, fmt.Errorf("globbing stale snapshots: %w", err)
	}

	name := fmt.Sprintf("%s_%s.tar.gz", base, now.Format("02Jan2006_15:04_Mon"))
	target := filepath.Join(workDir, name)

	if err := writeTarGz(target, dir, base); err != nil {
		_ = os.Remove(target)
		return nil, fmt.Errorf("creating snapshot %s: %w", name, err)
	}

	res := &Result{Created: target}
	for _, old := range stale {
		if old == target {
			continue
		}
		if err := os.Remove(old); err != nil {
			return res, fmt.Errorf("removing stale snapshot %s: %w", old, err)
		}
		res.Deleted = append(res.Deleted, old)
	}
	return res, nil
}

// writeTarGz archives the whole tree under dir, rooted at its base name.
func writeTarGz(target, dir, base string) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating archive file: %w", err)
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		arcname := base
		if rel != "." {
			arcname = filepath.Join(base, rel)
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(p); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(arcname)
		if info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		if info.Mode().IsRegular() {
			src, err := os.Open(p)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, src)
			_ = src.Close()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if walkErr != nil {
		_ = tw.Close()
		_ = gz.Close()
		_ = f.Close()
		return walkErr
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing archive file: %w", err)
	}
	return nil
}
