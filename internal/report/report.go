// Package report accumulates the per-run mirror log: titled, decorated text
// sections that are persisted to a log file and optionally mailed out.
package report

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// width is the fixed display width of the decorated section frames.
const width = 80

// Report is an append-only text accumulator. It is owned and mutated by a
// single run; no synchronization is provided.
type Report struct {
	log      strings.Builder
	prog     string
	version  string
	Filename string
}

// New creates an empty report for the named program. The log file name is
// derived from the program name.
func New(prog, version string) *Report {
	return &Report{
		prog:     prog,
		version:  version,
		Filename: prog + ".log",
	}
}

// Len reports the accumulated text length in bytes.
func (r *Report) Len() int { return r.log.Len() }

// String returns the accumulated log text.
func (r *Report) String() string { return r.log.String() }

// Reset discards the accumulated text so the next run starts a fresh
// record in the same file.
func (r *Report) Reset() { r.log.Reset() }

// Block appends a titled block framed by '=' bars above and below.
// Empty content appends nothing.
func (r *Report) Block(title, content string) {
	if content == "" {
		return
	}
	fmt.Fprintf(&r.log, "%s %s\n", strings.ToUpper(title), strings.Repeat("=", width-len(title)))
	r.log.WriteString(content)
	r.log.WriteString("\n")
	r.log.WriteString(strings.Repeat("=", width) + "\n")
}

// List appends a titled run of lines framed by a '_' bar above. There is no
// closing frame. An empty line set appends nothing.
func (r *Report) List(title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(&r.log, "%s %s\n", strings.ToUpper(title), strings.Repeat("_", width-len(title)))
	r.log.WriteString(strings.Join(lines, "\n"))
	r.log.WriteString("\n")
}

// Free appends an unframed paragraph followed by a blank separator.
func (r *Report) Free(text string) {
	if text == "" {
		return
	}
	r.log.WriteString(text + "\n\n")
}

// Time appends a block whose content is the current date and time,
// right-justified to the display width.
func (r *Report) Time(title string) {
	stamp := time.Now().Format("Monday 01/02/06, 15:04:05")
	r.Block(title, fmt.Sprintf("%*s", width, stamp))
}

// Header appends the identification block for a run: program name and
// version, a reference URL and a free-form message.
func (r *Report) Header(url, msg string) {
	script := fmt.Sprintf("%s (v%s)", r.prog, r.version)
	r.Block("Script", strings.Join([]string{script, url, "", msg}, "\n"))
}

// Write persists the accumulated text, UTF-8 encoded, to the report's log
// file. With appendMode the text is added to whatever is already there, so
// repeated scheduled runs accumulate in one file.
func (r *Report) Write(appendMode bool) error {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(r.Filename, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	if _, err := f.WriteString(r.log.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing log file: %w", err)
	}
	return nil
}
