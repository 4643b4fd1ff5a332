// Package mirror implements the mirror orchestration engine: one canonical
// operation descriptor normalized from any entry mode, the lftp control
// script derived from it, and the run sequencing around the transfer.
package mirror

import (
	"github.com/nstoeckigt/lftp-mirror/internal/report"
)

// Credentials selects between a named account and anonymous access.
// Exactly one variant is set on a validated Job.
type Credentials struct {
	User      string
	Pass      string
	Anonymous bool
}

// Display renders the account name for log messages.
func (c Credentials) Display() string {
	if c.Anonymous {
		return "anonymous"
	}
	return c.User
}

// loginField is the payload of the script's user line. Empty for anonymous
// access, which yields lftp's default anonymous handling.
func (c Credentials) loginField() string {
	if c.Anonymous {
		return ""
	}
	return c.User + " " + c.Pass
}

// EmailDelivery describes optional delivery of the run log by mail.
// When File is set it names an external SMTP credentials file and wins over
// the inline settings.
type EmailDelivery struct {
	To   []string
	SMTP report.SMTPSettings
	File string
}

// TransferOptions are the boolean mirror options passed through to lftp.
type TransferOptions struct {
	Erase        bool // -e: delete files not present at the source
	Newer        bool // -n: only newer files
	DeleteFirst  bool
	DepthFirst   bool
	NoEmptyDirs  bool
	NoRecursion  bool
	DryRun       bool
	UseCache     bool
	DelSource    bool // remove source files after transfer
	OnlyMissing  bool
	OnlyExisting bool
	Loop         bool
	IgnoreSize   bool
	IgnoreTime   bool
	NoPerms      bool
	NoUmask      bool
	NoSymlinks   bool
	AllowSUID    bool
	AllowChown   bool
	Dereference  bool
}

// Job is the canonical descriptor of one mirror operation, independent of
// whether its parameters arrived from the command line, the scheduled
// parameter tuple or a configuration file section.
type Job struct {
	Site        string
	Port        string
	Secure      bool // sftp instead of ftp
	SSLVerify   bool
	Credentials Credentials

	Remote  string
	Local   string
	Reverse bool // upload local to remote instead of downloading

	Options      TransferOptions
	IncludeGlobs []string
	ExcludeGlobs []string
	Parallel     int // 0 means sequential

	Quiet       bool
	Compress    bool
	UpdateCloud bool
	Email       *EmailDelivery

	// Warnings collects non-fatal normalization findings, surfaced by the
	// orchestrator instead of failing the run.
	Warnings []string
}
