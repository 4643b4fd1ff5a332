package report

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseSMTPFile reads SMTP transport settings from a credentials file.
// The format is line-oriented "key = value" with '#' comment lines;
// surrounding quotes around values are stripped. Recognized keys are
// from, server, user and pass.
func ParseSMTPFile(path string) (SMTPSettings, error) {
	var cfg SMTPSettings

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening smtp config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		value = stripQuotes(value)

		switch key {
		case "from":
			cfg.From = value
		case "server":
			cfg.Server = value
		case "user":
			cfg.User = value
		case "pass":
			cfg.Pass = value
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("reading smtp config: %w", err)
	}
	return cfg, nil
}

func stripQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
