package report

import (
	"fmt"
	"net"
	"net/smtp"
	"os"
	"os/user"
	"strings"
	"time"
)

// SMTPSettings carries the mail transport parameters for log delivery.
type SMTPSettings struct {
	From   string
	Server string
	User   string
	Pass   string
}

// localMailbox builds the invoking user's local mailbox address, used as a
// fallback sender and recipient.
func localMailbox() string {
	name := "nobody"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return name + "@" + host
}

// Send mails the accumulated log as the body of a single message. Transport
// failures are never returned: each one is appended to the report itself as
// a "mail error" list section, since delivery is best-effort and must not
// taint the mirror's own outcome.
func (r *Report) Send(subject string, smtpCfg SMTPSettings, to []string) {
	local := localMailbox()
	from := smtpCfg.From
	if from == "" {
		from = local
	}
	if len(to) == 0 {
		to = []string{local}
	}

	server := smtpCfg.Server
	if server == "" {
		server = "localhost"
	}
	addr := server
	if !strings.Contains(addr, ":") {
		addr += ":25"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s - %s\r\n", subject, time.Now().Format("Monday 01/02/06, 15:04:05"))
	fmt.Fprintf(&msg, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	msg.WriteString("\r\n")
	msg.WriteString(r.String())

	client, err := smtp.Dial(addr)
	if err != nil {
		r.List("mail error", []string{"Server unavailable or connection refused"})
		return
	}
	defer func() {
		_ = client.Quit()
	}()

	if server != "localhost" && smtpCfg.User != "" {
		host, _, splitErr := net.SplitHostPort(addr)
		if splitErr != nil {
			host = server
		}
		auth := smtp.PlainAuth("", smtpCfg.User, smtpCfg.Pass, host)
		if err := client.Auth(auth); err != nil {
			r.List("mail error", []string{"Authentication error"})
			return
		}
	}

	if err := client.Mail(from); err != nil {
		r.List("mail error", []string{"The server didn't accept the sender address"})
		return
	}
	accepted := 0
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err == nil {
			accepted++
		}
	}
	if accepted == 0 {
		r.List("mail error", []string{"All recipients were refused. Nobody got the mail."})
		return
	}

	w, err := client.Data()
	if err != nil {
		r.List("mail error", []string{"An unexpected error code, data refused"})
		return
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		r.List("mail error", []string{"An unexpected error code, data refused"})
		_ = w.Close()
		return
	}
	if err := w.Close(); err != nil {
		r.List("mail error", []string{"An unexpected error code, data refused"})
	}
}
