package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/mail"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

var _ mailer.Transport = (*Transport)(nil)

// dialer is the subset of gomail.Dialer the transport uses.
type dialer interface {
	Dial() (gomail.SendCloser, error)
	DialAndSend(m ...*gomail.Message) error
}

// Transport delivers messages over SMTP.
// A connection is opened per Send; Verify dials and quits without sending.
type Transport struct {
	dialer dialer
	host   string
	closed atomic.Bool
}

// New creates an SMTP transport.
func New(cfg Config) *Transport {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.SSL
	d.LocalName = cfg.LocalName
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} //nolint:gosec // opt-in via ?insecure=true
	}
	return &Transport{dialer: d, host: cfg.Host}
}

// Verify opens a session with the server, authenticates if credentials are
// set, and closes it.
func (t *Transport) Verify(ctx context.Context) error {
	if t.closed.Load() {
		return mailer.ErrTransportClosed
	}
	return run(ctx, func() error {
		conn, err := t.dialer.Dial()
		if err != nil {
			return fmt.Errorf("smtp: dial %s: %w", t.host, err)
		}
		return conn.Close()
	})
}

// Send implements mailer.Transport.
func (t *Transport) Send(ctx context.Context, opts *mailer.Options) (*mailer.Result, error) {
	if t.closed.Load() {
		return nil, mailer.ErrTransportClosed
	}

	msg, id := BuildMessage(opts)
	if err := run(ctx, func() error { return t.dialer.DialAndSend(msg) }); err != nil {
		return nil, fmt.Errorf("smtp: send: %w", err)
	}
	return &mailer.Result{MessageID: id}, nil
}

// Close marks the transport closed. Sessions are per-send, so there is no
// connection to tear down.
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}

// run executes fn, returning early if ctx is done first.
// gomail has no context support; fn keeps running in the background.
func run(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BuildMessage converts options to a MIME message and returns it with its
// generated Message-ID.
func BuildMessage(opts *mailer.Options) (*gomail.Message, string) {
	m := gomail.NewMessage()

	id := messageID(opts.From)
	m.SetHeader("Message-ID", "<"+id+">")

	if opts.From != nil {
		m.SetHeader("From", formatAddress(m, *opts.From))
	}
	if opts.ReplyTo != nil {
		m.SetHeader("Reply-To", formatAddress(m, *opts.ReplyTo))
	}
	setAddressList(m, "To", opts.To)
	setAddressList(m, "Cc", opts.CC)
	setAddressList(m, "Bcc", opts.BCC)

	if opts.Subject != "" {
		m.SetHeader("Subject", opts.Subject)
	}
	if p := priorityHeader(opts.Priority); p != "" {
		m.SetHeader("X-Priority", p)
	}
	if len(opts.Tags) > 0 {
		m.SetHeader("X-Tag", tagHeaders(opts.Tags)...)
	}
	for k, v := range opts.Headers {
		m.SetHeader(k, v)
	}

	switch {
	case opts.Text != "" && opts.HTML != "":
		m.SetBody("text/plain", opts.Text)
		m.AddAlternative("text/html", opts.HTML)
	case opts.HTML != "":
		m.SetBody("text/html", opts.HTML)
	case opts.Text != "":
		m.SetBody("text/plain", opts.Text)
	}

	for _, a := range opts.Attachments {
		attach(m, a)
	}

	return m, id
}

func formatAddress(m *gomail.Message, a mailer.Address) string {
	if !a.HasName() || a.Name == "" {
		return a.Address
	}
	return m.FormatAddress(a.Address, a.Name)
}

func setAddressList(m *gomail.Message, field string, list []mailer.Address) {
	if len(list) == 0 {
		return
	}
	values := make([]string, len(list))
	for i, a := range list {
		values[i] = formatAddress(m, a)
	}
	m.SetHeader(field, values...)
}

func attach(m *gomail.Message, a mailer.Attachment) {
	var settings []gomail.FileSetting
	header := map[string][]string{}
	if a.ContentType != "" {
		header["Content-Type"] = []string{a.ContentType}
	}
	if a.ContentID != "" {
		header["Content-ID"] = []string{"<" + a.ContentID + ">"}
	}
	if len(header) > 0 {
		settings = append(settings, gomail.SetHeader(header))
	}

	name := a.Path
	if a.Content != nil {
		content := a.Content
		name = a.Filename
		if name == "" {
			name = "attachment"
		}
		settings = append(settings, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(content)
			return err
		}))
	} else if a.Filename != "" {
		settings = append(settings, gomail.Rename(a.Filename))
	}

	if a.ContentID != "" {
		m.Embed(name, settings...)
		return
	}
	m.Attach(name, settings...)
}

func priorityHeader(p mailer.Priority) string {
	switch p {
	case mailer.PriorityHigh:
		return "1 (Highest)"
	case mailer.PriorityNormal:
		return "3 (Normal)"
	case mailer.PriorityLow:
		return "5 (Lowest)"
	default:
		return ""
	}
}

// tagHeaders renders tags as sorted "name" or "name=value" entries.
func tagHeaders(tags mailer.Tags) []string {
	out := make([]string, 0, len(tags))
	for name, v := range tags {
		switch val := v.(type) {
		case nil, struct{}:
			out = append(out, name)
		default:
			out = append(out, fmt.Sprintf("%s=%v", name, val))
		}
	}
	slices.Sort(out)
	return out
}

func messageID(from *mailer.Address) string {
	domain := "localhost"
	if from != nil {
		if addr, err := mail.ParseAddress(from.Address); err == nil {
			if i := strings.LastIndexByte(addr.Address, '@'); i >= 0 {
				domain = addr.Address[i+1:]
			}
		}
	}
	return uuid.NewString() + "@" + domain
}
