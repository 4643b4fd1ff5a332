// Package cloud triggers a nextCloud file-index refresh for a mirrored
// directory by running the occ maintenance binary under the web service
// account.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"os/user"
	"regexp"
	"strings"
)

var (
	filesRe = regexp.MustCompile(`.*files/(.*)`)
	dataRe  = regexp.MustCompile(`.*data/([^/]+/files/.*)`)
)

// Reindexer locates and runs the occ binary to re-index a cloud folder.
type Reindexer struct {
	DataRoot     string // nextCloud data directory, e.g. /var/nextcloud-data
	ServiceUser  string // account owning the cloud files, e.g. www-data
	FallbackUser string // cloud user assumed when running as root
	Logger       *slog.Logger
}

// New creates a Reindexer with the given settings.
func New(dataRoot, serviceUser, fallbackUser string, logger *slog.Logger) *Reindexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{
		DataRoot:     dataRoot,
		ServiceUser:  serviceUser,
		FallbackUser: fallbackUser,
		Logger:       logger,
	}
}

// CloudPath derives the cloud-relative scan path ("<user>/files/...") from
// a mirrored local path. A local path outside the data directory is mapped
// into the invoking user's files tree under DataRoot.
func (r *Reindexer) CloudPath(local string) (string, error) {
	p := local
	if !filesRe.MatchString(p) {
		name := r.FallbackUser
		if u, err := user.Current(); err == nil && u.Username != "root" {
			name = u.Username
		}
		p = fmt.Sprintf("%s/%s/files/%s", strings.TrimRight(r.DataRoot, "/"), name, local)
	}

	m := dataRe.FindStringSubmatch(p)
	if m == nil {
		return "", fmt.Errorf("cannot derive cloud path from %q", local)
	}
	return m[1], nil
}

// findOCC resolves the occ binary, first through the locate database, then
// with a filesystem search.
func (r *Reindexer) findOCC(ctx context.Context) (string, error) {
	if out, err := exec.CommandContext(ctx, "locate", "occ").Output(); err == nil {
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if strings.HasSuffix(line, "/occ") || line == "occ" {
				return line, nil
			}
		}
	}

	out, err := exec.CommandContext(ctx, "find", "/", "-xdev", "-type", "f", "-name", "occ").Output()
	if err == nil {
		if line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n"); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("occ not found")
}

// Reindex blocks until the cloud folder covering local has been rescanned,
// returning a summary line for the run log.
func (r *Reindexer) Reindex(ctx context.Context, local string) (string, error) {
	cloudPath, err := r.CloudPath(local)
	if err != nil {
		return "", err
	}

	binary, err := r.findOCC(ctx)
	if err != nil {
		return "", err
	}

	r.Logger.Info("re-indexing cloud folder", "path", cloudPath, "occ", binary)

	cmd := exec.CommandContext(ctx, "sudo", "-u", r.ServiceUser, binary, "files:scan", "--path", cloudPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("occ files:scan failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	return fmt.Sprintf("Cloud folder %s fully indexed.", cloudPath), nil
}
