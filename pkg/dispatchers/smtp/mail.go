package smtp

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	config "github.com/azurescope/explorer/config"
)

// sendEmail delivers one message through the configured smarthost. TLS is
// opportunistic unless RequireTLS is set, in which case a server without
// STARTTLS is an error.
func sendEmail(conf config.SMTP, body string) error {
	host, _, err := net.SplitHostPort(conf.Smarthost)
	if err != nil {
		return fmt.Errorf("invalid smarthost %q: %w", conf.Smarthost, err)
	}

	c, err := smtp.Dial(conf.Smarthost)
	if err != nil {
		return fmt.Errorf("connecting to smarthost: %w", err)
	}
	defer c.Quit()

	if conf.Hello != "" {
		if err := c.Hello(conf.Hello); err != nil {
			return err
		}
	}

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	} else if conf.RequireTLS {
		return fmt.Errorf("requireTLS is set but %q does not advertise STARTTLS", conf.Smarthost)
	}

	if auth := buildAuth(conf.Auth, host); auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}

	if err := c.Mail(conf.From); err != nil {
		return err
	}

	for _, addr := range strings.Split(conf.To, ",") {
		if err := c.Rcpt(strings.TrimSpace(addr)); err != nil {
			return err
		}
	}

	wc, err := c.Data()
	if err != nil {
		return err
	}

	if _, err := wc.Write(composeMessage(conf, body)); err != nil {
		return err
	}

	return wc.Close()
}

func composeMessage(conf config.SMTP, body string) []byte {
	subject := conf.Subject
	if subject == "" {
		subject = defaultSubject
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", conf.From)
	fmt.Fprintf(&msg, "To: %s\r\n", conf.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)

	for k, v := range conf.Headers {
		fmt.Fprintf(&msg, "%s: %s\r\n", k, v)
	}

	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	return msg.Bytes()
}
