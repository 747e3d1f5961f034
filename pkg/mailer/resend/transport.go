package resend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

var _ mailer.Transport = (*Transport)(nil)

// Transport delivers messages through the Resend HTTP API.
type Transport struct {
	client *resend.Client
	closed atomic.Bool
}

// New creates a Resend transport.
func New(cfg Config) (*Transport, error) {
	client := resend.NewClient(cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("resend: invalid base url: %w", err)
		}
		client.BaseURL = base
	}
	return &Transport{client: client}, nil
}

// Verify checks that the API key is accepted by listing domains.
func (t *Transport) Verify(ctx context.Context) error {
	if t.closed.Load() {
		return mailer.ErrTransportClosed
	}
	if _, err := t.client.Domains.ListWithContext(ctx); err != nil {
		return fmt.Errorf("resend: verify: %w", err)
	}
	return nil
}

// Send implements mailer.Transport.
func (t *Transport) Send(ctx context.Context, opts *mailer.Options) (*mailer.Result, error) {
	if t.closed.Load() {
		return nil, mailer.ErrTransportClosed
	}

	resp, err := t.client.Emails.SendWithContext(ctx, buildRequest(opts))
	if err != nil {
		return nil, fmt.Errorf("resend: failed to send email: %w", err)
	}
	return &mailer.Result{MessageID: resp.Id}, nil
}

// Close marks the transport closed. The HTTP client holds no session.
func (t *Transport) Close() error {
	t.closed.Store(true)
	return nil
}

func buildRequest(opts *mailer.Options) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		To:      addresses(opts.To),
		Cc:      addresses(opts.CC),
		Bcc:     addresses(opts.BCC),
		Subject: opts.Subject,
		Html:    opts.HTML,
		Text:    opts.Text,
	}
	if opts.From != nil {
		req.From = opts.From.String()
	}
	if opts.ReplyTo != nil {
		req.ReplyTo = opts.ReplyTo.String()
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	if p := priorityHeader(opts.Priority); p != "" {
		headers["X-Priority"] = p
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}
	if len(headers) > 0 {
		req.Headers = headers
	}

	if len(opts.Attachments) > 0 {
		req.Attachments = convertAttachments(opts.Attachments)
	}
	if len(opts.Tags) > 0 {
		req.Tags = convertTags(opts.Tags)
	}
	return req
}

func addresses(list []mailer.Address) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.String()
	}
	return out
}

func convertAttachments(attachments []mailer.Attachment) []*resend.Attachment {
	result := make([]*resend.Attachment, len(attachments))
	for i, a := range attachments {
		result[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
		if a.Content == nil {
			result[i].Path = a.Path
		}
	}
	return result
}

func convertTags(tags mailer.Tags) []resend.Tag {
	result := make([]resend.Tag, 0, len(tags))
	for name, value := range tags {
		result = append(result, resend.Tag{
			Name:  name,
			Value: tagValue(value),
		})
	}
	return result
}

// tagValue converts any value to a string for Resend's tag API.
// Presence-only tags (struct{}{}) become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
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
