package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nstoeckigt/lftp-mirror/internal/archive"
	"github.com/nstoeckigt/lftp-mirror/internal/diskuse"
	"github.com/nstoeckigt/lftp-mirror/internal/notify"
	"github.com/nstoeckigt/lftp-mirror/internal/report"
)

// RunRecord summarizes one finished run for the history store.
type RunRecord struct {
	UUID       string
	Mode       string
	Site       string
	Remote     string
	Local      string
	Direction  string
	ExitCode   int
	BytesTotal int64
	FileCount  int
	Archive    string
	Status     string
	ErrorMsg   string
	StartTime  time.Time
	EndTime    time.Time
}

// RunRecorder persists run history. Recording is best-effort; a failing
// recorder is logged and never aborts a run.
type RunRecorder interface {
	RecordRun(rec *RunRecord) error
}

// Reindexer triggers a remote content re-index for a mirrored local path
// and returns a human-readable summary.
type Reindexer interface {
	Reindex(ctx context.Context, localPath string) (string, error)
}

// BatchSection is one named mirror operation from a configuration file.
type BatchSection struct {
	Name  string
	Tuple Tuple
}

// Orchestrator sequences a mirror run: build the control script, execute
// the transfer, rotate archives, account disk usage and finalize the log.
// It is single-threaded; phases never overlap.
type Orchestrator struct {
	WorkDir   string
	URL       string
	Report    *report.Report
	Runner    TransferRunner
	Recorder  RunRecorder // optional
	Notifier  notify.Notifier
	Reindexer Reindexer // optional
	Logger    *slog.Logger
	Now       func() time.Time // defaults to time.Now
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Orchestrator) notify(msg, status string) {
	if o.Notifier != nil {
		o.Notifier.Notify(msg, status)
	}
}

// RunJob executes one normalized mirror operation to completion and returns
// the transfer tool's exit code. The log record is persisted even for
// failed transfers; only failures strictly before the transfer abort
// without log side effects.
func (o *Orchestrator) RunJob(ctx context.Context, mode string, job *Job) (int, error) {
	start := o.now()
	runID := uuid.NewString()
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	src, dst := job.Remote, job.Local
	if job.Reverse {
		src, dst = job.Local, job.Remote
	}

	// Each run is one fresh record appended to the cumulative log file.
	o.Report.Reset()

	msg := fmt.Sprintf("Connected to %s as %s\n", job.Site, job.Credentials.Display())
	msg += fmt.Sprintf("Mirror %s to %s\n", src, dst)
	msg += "Run " + runID
	o.Report.Header(o.URL, msg)
	o.Report.Time("Start time")
	o.Report.List("Warnings", job.Warnings)
	for _, w := range job.Warnings {
		log.Warn(w)
	}
	o.notify("Mirroring with "+job.Site+"...", "sync")

	// Free space on the local target's filesystem, informational only.
	if free, err := diskuse.FreeSpace(nearestExisting(job.Local)); err == nil {
		o.Report.List("Local free space", []string{diskuse.BestUnit(int64(free)).String()})
	} else {
		log.Warn("free space probe failed", "error", err)
	}

	if _, err := os.Stat(job.Local); os.IsNotExist(err) {
		if err := os.MkdirAll(job.Local, 0o755); err != nil {
			return 0, fmt.Errorf("creating local directory %s: %w", job.Local, err)
		}
		o.Report.List("Created new directory", []string{job.Local})
		log.Info("created local directory", "path", job.Local)
	}

	scriptPath, err := WriteScript(job, o.WorkDir)
	if err != nil {
		return 0, err
	}
	// The script is ephemeral: it must disappear on every path out of the
	// transfer phase, success or not.
	defer func() {
		if err := os.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove lftp script", "path", scriptPath, "error", err)
		}
	}()

	o.Report.List("lftp mirror arguments", []string{job.MirrorArgs()})

	lines, code, runErr := o.Runner.Run(ctx, scriptPath, job.Quiet)
	o.Report.List("lftp output", lines)
	if runErr != nil {
		o.Report.List("lftp error", []string{runErr.Error()})
		return code, o.finalize(start, runID, mode, job, code, "", runErr)
	}
	log.Info("transfer finished", "site", job.Site, "exit_code", code)

	if o.Notifier != nil {
		o.Report.List("Notification errors", o.Notifier.Errors())
	}

	archivePath := ""
	if !job.Reverse && job.Compress {
		o.notify("Compressing folder...", "info")
		res, err := archive.Rotate(job.Local, o.WorkDir, o.now())
		if err != nil {
			return code, o.finalize(start, runID, mode, job, code, "",
				&HousekeepingError{Op: "archive rotation", Err: err})
		}
		o.Report.List("Rotate compressed copies", res.Describe())
		archivePath = res.Created
	}

	if err := o.accountDiskUse(job); err != nil {
		return code, o.finalize(start, runID, mode, job, code, archivePath,
			&HousekeepingError{Op: "disk accounting", Err: err})
	}

	if err := o.finalize(start, runID, mode, job, code, archivePath, nil); err != nil {
		return code, err
	}

	if job.UpdateCloud && o.Reindexer != nil {
		o.notify("Re-indexing cloud folder...", "info")
		summary, err := o.Reindexer.Reindex(ctx, job.Local)
		if err != nil {
			return code, &RemoteIndexError{Err: err}
		}
		o.Report.Block("Reindexing cloud", summary)
		o.notify(summary, "ok")
	}

	if job.Email != nil {
		o.sendLog(job.Email)
	}

	o.notify("Ended Ok", "ok")
	return code, nil
}

// accountDiskUse writes the disk usage block: local tree plus matching
// archives plus the current log file, in the best-fit unit.
func (o *Orchestrator) accountDiskUse(job *Job) error {
	base := filepath.Base(job.Local)

	var gzTotal int64
	matches, err := filepath.Glob(filepath.Join(o.WorkDir, base+"*.gz"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		sz, _, err := diskuse.PathInfo(m)
		if err != nil {
			return err
		}
		gzTotal += sz
	}

	var logSize int64
	if _, err := os.Stat(o.Report.Filename); err == nil {
		logSize, _, err = diskuse.PathInfo(o.Report.Filename)
		if err != nil {
			return err
		}
	}

	localSize, fileCount, err := diskuse.PathInfo(job.Local)
	if err != nil {
		return err
	}

	size := diskuse.BestUnit(localSize + gzTotal + logSize)
	margin := 70 - len(strconv.Itoa(fileCount))
	o.Report.Block("Disk space used",
		fmt.Sprintf("%d files%*.2f %s", fileCount, margin, size.Value, size.Unit))
	return nil
}

// finalize stamps the footer, persists the log in append mode and records
// the run. It is reached for failed transfers too, so a durable record
// exists for every run that got as far as invoking the tool.
func (o *Orchestrator) finalize(start time.Time, runID, mode string, job *Job, code int, archivePath string, cause error) error {
	if cause != nil {
		o.Report.List("run error", []string{cause.Error()})
	}
	o.Report.Time("End time")
	o.Report.Free("\n")

	if err := o.Report.Write(true); err != nil {
		if cause != nil {
			return cause
		}
		return &HousekeepingError{Op: "log persistence", Err: err}
	}

	o.recordRun(start, runID, mode, job, code, archivePath, cause)
	return cause
}

func (o *Orchestrator) recordRun(start time.Time, runID, mode string, job *Job, code int, archivePath string, cause error) {
	if o.Recorder == nil {
		return
	}

	direction := "download"
	if job.Reverse {
		direction = "upload"
	}
	status := "success"
	errMsg := ""
	switch {
	case cause != nil:
		status = "failed"
		errMsg = cause.Error()
	case code != 0:
		status = "transfer-error"
	}

	bytesTotal, fileCount := int64(0), 0
	if sz, n, err := diskuse.PathInfo(job.Local); err == nil {
		bytesTotal, fileCount = sz, n
	}

	rec := &RunRecord{
		UUID:       runID,
		Mode:       mode,
		Site:       job.Site,
		Remote:     job.Remote,
		Local:      job.Local,
		Direction:  direction,
		ExitCode:   code,
		BytesTotal: bytesTotal,
		FileCount:  fileCount,
		Archive:    archivePath,
		Status:     status,
		ErrorMsg:   errMsg,
		StartTime:  start,
		EndTime:    o.now(),
	}
	if err := o.Recorder.RecordRun(rec); err != nil {
		if o.Logger != nil {
			o.Logger.Warn("failed to record run history", "error", err)
		}
	}
}

// sendLog mails the accumulated log. Delivery problems end up inside the
// report itself; they never fail the run.
func (o *Orchestrator) sendLog(email *EmailDelivery) {
	settings := email.SMTP
	if email.File != "" {
		parsed, err := report.ParseSMTPFile(email.File)
		if err != nil {
			o.Report.List("mail error", []string{err.Error()})
			return
		}
		settings = parsed
	}
	o.Report.Send("FTP Sync", settings, email.To)
}

// RunBatch executes every configuration section in order, appending all of
// them to the same cumulative log. A section that fails to normalize is
// recorded and skipped; the remaining sections still run. The returned code
// is non-zero if any section failed.
func (o *Orchestrator) RunBatch(ctx context.Context, sections []BatchSection) (int, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	finalCode := 0
	failures := 0
	for _, s := range sections {
		job, err := ExpandTuple(s.Tuple)
		if err != nil {
			log.Error("section failed to normalize, skipping", "section", s.Name, "error", err)
			o.Report.Reset()
			o.Report.List("Config error", []string{s.Name + ": " + err.Error()})
			if werr := o.Report.Write(true); werr != nil {
				log.Warn("failed to persist config error", "error", werr)
			}
			failures++
			continue
		}

		code, err := o.RunJob(ctx, "cfg", job)
		if err != nil {
			log.Error("section run failed", "section", s.Name, "error", err)
			failures++
			continue
		}
		if code != 0 {
			finalCode = code
		}
	}

	if failures > 0 && finalCode == 0 {
		finalCode = 1
	}
	return finalCode, nil
}

// nearestExisting walks up from path to the first component that exists,
// so the free-space probe works before the local directory is created.
func nearestExisting(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(p)
		if parent == p {
			return p
		}
		p = parent
	}
}
