package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"

	"github.com/d3ntaltech/calendrier/internal/config"
	"gopkg.in/gomail.v2"
)

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// TransportError wraps any failure to hand a message to the transport.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SMTPTransport relays messages through the configured mail server. The
// whole SMTP conversation is bound to the caller's context: the connection
// carries its deadline and is closed on cancellation.
type SMTPTransport struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewSMTPTransport(cfg config.SMTPConfig) *SMTPTransport {
	return &SMTPTransport{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	switch {
	case t.host == "":
		return &TransportError{Op: "config", Err: errors.New("smtp host is not configured")}
	case t.from == "":
		return &TransportError{Op: "config", Err: errors.New("smtp sender is not configured")}
	case len(msg.To) == 0:
		return &TransportError{Op: "config", Err: errors.New("no recipients configured")}
	}

	message := gomail.NewMessage()
	message.SetHeader("From", t.from)
	message.SetHeader("To", msg.To...)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		message.AddAlternative("text/html", msg.HTML)
	}

	if err := t.deliver(ctx, message); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

func (t *SMTPTransport) deliver(ctx context.Context, message *gomail.Message) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(t.host, strconv.Itoa(t.port)))
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	tlsConfig := &tls.Config{ServerName: t.host}
	// 465 speaks TLS from the first byte; other ports upgrade with STARTTLS.
	implicitTLS := t.port == 465
	if implicitTLS {
		conn = tls.Client(conn, tlsConfig)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok && !implicitTLS {
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}
	if t.username != "" {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
				return err
			}
		}
	}

	send := gomail.SendFunc(func(from string, to []string, body io.WriterTo) error {
		if err := client.Mail(from); err != nil {
			return err
		}
		for _, rcpt := range to {
			if err := client.Rcpt(rcpt); err != nil {
				return err
			}
		}
		w, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := body.WriteTo(w); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	})
	if err := gomail.Send(send, message); err != nil {
		return err
	}
	return client.Quit()
}
