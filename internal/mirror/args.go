package mirror

import (
	"encoding/base64"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/nstoeckigt/lftp-mirror/internal/report"
)

// flagValues receives the parsed option grammar before validation.
type flagValues struct {
	anonymous bool
	port      string
	secure    bool
	sslVerify bool

	erase       bool
	newer       bool
	parallel    int
	reverse     bool
	deleteFirst bool
	depthFirst  bool
	noEmptyDirs bool
	noRecursion bool
	dryRun      bool
	useCache    bool
	delSource   bool
	onlyMissing bool
	onlyExist   bool
	loop        bool
	ignoreSize  bool
	ignoreTime  bool
	noPerms     bool
	noUmask     bool
	noSymlinks  bool
	allowSUID   bool
	allowChown  bool
	dereference bool

	excludeGlobs []string
	includeGlobs []string

	quiet       bool
	compress    bool
	updateCloud bool

	toAddrs    []string
	smtpConfig string
	smtpServer string
	smtpUser   string
	smtpPass   string
	smtpFrom   string
}

// newGrammar declares the option grammar shared by every entry mode.
func newGrammar(v *flagValues) *pflag.FlagSet {
	fs := pflag.NewFlagSet("shell", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.BoolVarP(&v.anonymous, "anon", "a", false, "connect as the anonymous user")
	fs.StringVarP(&v.port, "port", "p", "", "the ftp server port")
	fs.BoolVarP(&v.secure, "secure", "s", false, "use the sftp protocol instead of ftp")
	fs.BoolVar(&v.sslVerify, "ssl-verify", false, "verify ssl certificates")
	fs.BoolVarP(&v.erase, "erase", "e", false, "delete files not present at target site")
	fs.BoolVarP(&v.newer, "newer", "n", false, "download only newer files")
	fs.IntVarP(&v.parallel, "parallel", "P", 0, "download N files in parallel (N=2 if no value given)")
	fs.Lookup("parallel").NoOptDefVal = "2"
	fs.BoolVarP(&v.reverse, "reverse", "r", false, "reverse, upload files from local to remote")
	fs.BoolVar(&v.deleteFirst, "delete-first", false, "delete old files before transferring new ones")
	fs.BoolVar(&v.depthFirst, "depth-first", false, "descend into subdirectories before transferring files")
	fs.BoolVar(&v.noEmptyDirs, "no-empty-dirs", false, "don't create empty dirs (needs --depth-first)")
	fs.BoolVar(&v.noRecursion, "no-recursion", false, "don't go to subdirectories")
	fs.BoolVar(&v.dryRun, "dry-run", false, "simulation, don't execute anything, only write to log")
	fs.BoolVar(&v.useCache, "use-cache", false, "use cached directory listings")
	fs.BoolVar(&v.delSource, "del-source", false, "remove files (no dirs) after transfer (caution!)")
	fs.BoolVar(&v.onlyMissing, "only-missing", false, "download only missing files")
	fs.BoolVar(&v.onlyExist, "only-existing", false, "download only files already existing at target")
	fs.BoolVar(&v.loop, "loop", false, "loop until no changes found")
	fs.BoolVar(&v.ignoreSize, "ignore-size", false, "ignore size when deciding whether to download")
	fs.BoolVar(&v.ignoreTime, "ignore-time", false, "ignore time when deciding whether to download")
	fs.BoolVar(&v.noPerms, "no-perms", false, "don't set file permissions")
	fs.BoolVar(&v.noUmask, "no-umask", false, "don't apply umask to file modes")
	fs.BoolVar(&v.noSymlinks, "no-symlinks", false, "don't create symbolic links")
	fs.BoolVar(&v.allowSUID, "allow-suid", false, "set suid/sgid bits according to the remote site")
	fs.BoolVar(&v.allowChown, "allow-chown", false, "try to set owner and group on files")
	fs.BoolVar(&v.dereference, "dereference", false, "download symbolic links as files")
	fs.StringArrayVar(&v.excludeGlobs, "exclude-glob", nil, "exclude matching files; GP is a glob pattern, e.g. '*.zip'")
	fs.StringArrayVar(&v.includeGlobs, "include-glob", nil, "include matching files; GP is a glob pattern, e.g. '*.zip'")
	fs.BoolVarP(&v.quiet, "quiet", "q", false, "don't display the transfer details, only log them")
	fs.BoolVar(&v.compress, "compress", false, "create daily archive files")
	fs.BoolVar(&v.updateCloud, "update-cloud", false, "re-index new files in cloud")
	fs.StringSliceVar(&v.toAddrs, "to-addrs", nil, "receiver email address(es) for the log")
	fs.StringVar(&v.smtpConfig, "smtp-config", "", "file to import SMTP settings from")
	fs.StringVar(&v.smtpServer, "smtp-server", "", "the smtp server")
	fs.StringVar(&v.smtpUser, "smtp-user", "", "the smtp server username")
	fs.StringVar(&v.smtpPass, "smtp-pass", "", "the smtp server password")
	fs.StringVar(&v.smtpFrom, "smtp-from", "", "sender's email address")

	return fs
}

// Usage renders the canonical grammar's flag help for the shell command.
func Usage() string {
	var v flagValues
	return newGrammar(&v).FlagUsages()
}

// splitLogin extracts the two-argument -l/--login pair before flag parsing,
// since the flag grammar itself is single-valued.
func splitLogin(tokens []string) (user, pass string, rest []string, found bool, err error) {
	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		if t != "-l" && t != "--login" {
			rest = append(rest, t)
			continue
		}
		if found {
			return "", "", nil, false, configErrorf("--login given more than once")
		}
		if i+2 >= len(tokens) {
			return "", "", nil, false, configErrorf("--login requires a username and a password")
		}
		user, pass = tokens[i+1], tokens[i+2]
		found = true
		i += 2
	}
	return user, pass, rest, found, nil
}

// ParseArgs normalizes one mirror operation from tokens in the shell
// grammar:
//
//	<site> <remote> <local> (-l user password | -a) [options...]
//
// Every entry mode funnels through this single parser, so interactive,
// scheduled and batch input can never diverge in accepted option semantics.
func ParseArgs(tokens []string) (*Job, error) {
	user, pass, rest, haveLogin, err := splitLogin(tokens)
	if err != nil {
		return nil, err
	}

	var v flagValues
	fs := newGrammar(&v)
	if err := fs.Parse(rest); err != nil {
		return nil, configErrorf("%v", err)
	}

	positional := fs.Args()
	if len(positional) != 3 {
		return nil, configErrorf("expected <site> <remote> <local>, got %d positional arguments", len(positional))
	}

	if haveLogin && v.anonymous {
		return nil, configErrorf("--login and --anon are mutually exclusive")
	}
	if !haveLogin && !v.anonymous {
		return nil, configErrorf("either --login or --anon is required")
	}
	if haveLogin && user == "" {
		return nil, configErrorf("--login username must not be empty")
	}
	if v.parallel < 0 {
		return nil, configErrorf("--parallel must not be negative")
	}

	job := &Job{
		Site:      positional[0],
		Port:      v.port,
		Secure:    v.secure,
		SSLVerify: v.sslVerify,
		Credentials: Credentials{
			User:      user,
			Pass:      pass,
			Anonymous: v.anonymous,
		},
		Remote:  filepath.Clean(positional[1]),
		Local:   filepath.Clean(positional[2]),
		Reverse: v.reverse,
		Options: TransferOptions{
			Erase:        v.erase,
			Newer:        v.newer,
			DeleteFirst:  v.deleteFirst,
			DepthFirst:   v.depthFirst,
			NoEmptyDirs:  v.noEmptyDirs,
			NoRecursion:  v.noRecursion,
			DryRun:       v.dryRun,
			UseCache:     v.useCache,
			DelSource:    v.delSource,
			OnlyMissing:  v.onlyMissing,
			OnlyExisting: v.onlyExist,
			Loop:         v.loop,
			IgnoreSize:   v.ignoreSize,
			IgnoreTime:   v.ignoreTime,
			NoPerms:      v.noPerms,
			NoUmask:      v.noUmask,
			NoSymlinks:   v.noSymlinks,
			AllowSUID:    v.allowSUID,
			AllowChown:   v.allowChown,
			Dereference:  v.dereference,
		},
		IncludeGlobs: v.includeGlobs,
		ExcludeGlobs: v.excludeGlobs,
		Parallel:     v.parallel,
		Quiet:        v.quiet,
		Compress:     v.compress,
		UpdateCloud:  v.updateCloud,
	}

	email, warnings, err := normalizeEmail(&v)
	if err != nil {
		return nil, err
	}
	job.Email = email
	job.Warnings = warnings

	return job, nil
}

// normalizeEmail validates the mail delivery sub-descriptor. An external
// credentials file wins over individually supplied SMTP fields with a
// warning; recipients without a usable SMTP source are an error, as are
// SMTP fields without recipients.
func normalizeEmail(v *flagValues) (*EmailDelivery, []string, error) {
	anyField := v.smtpServer != "" || v.smtpUser != "" || v.smtpPass != "" || v.smtpFrom != ""

	if len(v.toAddrs) == 0 {
		if anyField || v.smtpConfig != "" {
			return nil, nil, configErrorf("--to-addrs must be specified if any SMTP configuration is provided")
		}
		return nil, nil, nil
	}

	if v.smtpConfig != "" {
		var warnings []string
		if anyField {
			warnings = append(warnings,
				"--smtp-config is provided; --smtp-server, --smtp-user, --smtp-pass and --smtp-from are ignored")
		}
		return &EmailDelivery{To: v.toAddrs, File: v.smtpConfig}, warnings, nil
	}

	if v.smtpServer == "" || v.smtpUser == "" || v.smtpPass == "" || v.smtpFrom == "" {
		return nil, nil, configErrorf(
			"--smtp-server, --smtp-user, --smtp-pass and --smtp-from must all be provided when --smtp-config is not")
	}
	return &EmailDelivery{
		To: v.toAddrs,
		SMTP: report.SMTPSettings{
			From:   v.smtpFrom,
			Server: v.smtpServer,
			User:   v.smtpUser,
			Pass:   v.smtpPass,
		},
	}, nil, nil
}

// Tuple is the six-field parameter set used by the scheduled mode and by
// each section of a batch configuration file. Password carries the account
// password encoded in base64.
type Tuple struct {
	Site     string
	Port     string
	Remote   string
	Local    string
	User     string
	Password string
	Options  string
}

// ExpandTuple renders a tuple into the shell grammar token form and parses
// it through the canonical grammar. An empty user means anonymous access.
func ExpandTuple(t Tuple) (*Job, error) {
	if t.Site == "" {
		return nil, configErrorf("site must not be empty")
	}
	if t.Remote == "" || t.Local == "" {
		return nil, configErrorf("remote and local directories must not be empty")
	}

	tokens := []string{t.Site, t.Remote, t.Local}
	if t.Port != "" {
		tokens = append(tokens, "-p", t.Port)
	}
	if t.User != "" {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(t.Password))
		if err != nil {
			return nil, configErrorf("password is not valid base64: %v", err)
		}
		tokens = append(tokens, "-l", t.User, string(raw))
	} else {
		tokens = append(tokens, "-a")
	}
	tokens = append(tokens, strings.Fields(t.Options)...)

	return ParseArgs(tokens)
}
