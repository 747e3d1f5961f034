package mailer

import (
	"maps"
	"net/mail"
	"slices"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Transports that support tagging convert them to their own format:
//   - Resend: name-value pairs (presence-only tags become name="true")
//   - SMTP: X-Tag headers
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Address is a mailbox with an optional display name.
// A name set to "" is not the same as no name at all.
type Address struct {
	Address string
	Name    string
	named   bool
}

// NewAddress creates an Address. Only the first name is used.
func NewAddress(address string, name ...string) Address {
	if len(name) == 0 {
		return Address{Address: address}
	}
	return Address{Address: address, Name: name[0], named: true}
}

// HasName reports whether a display name was given.
func (a Address) HasName() bool {
	return a.named
}

// String formats the address for mail headers.
// Returns the bare address when no name was given, RFC 5322 form otherwise.
func (a Address) String() string {
	if !a.named {
		return a.Address
	}
	return (&mail.Address{Name: a.Name, Address: a.Address}).String()
}

// Attachment represents an email attachment.
// Either Content or Path must be set; Content wins when both are present.
type Attachment struct {
	Filename    string `json:"filename"`               // Display name for the attachment
	ContentType string `json:"content_type,omitempty"` // MIME type (e.g., "application/pdf")
	ContentID   string `json:"content_id,omitempty"`   // Optional Content-ID for inline attachments
	Path        string `json:"path,omitempty"`         // Local file path or remote URL (transport-dependent)
	Content     []byte `json:"content,omitempty"`      // Raw file content
}

// Priority is the delivery priority of a message.
type Priority string

// Message priorities.
const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Options is a finalized message as handed to a Transport.
// Empty string fields are treated as unset.
type Options struct {
	Headers     map[string]string `json:"headers,omitempty"`
	Tags        Tags              `json:"tags,omitempty"`
	From        *Address          `json:"from,omitempty"`
	ReplyTo     *Address          `json:"reply_to,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	Priority    Priority          `json:"priority,omitempty"`
	Text        string            `json:"text,omitempty"`
	HTML        string            `json:"html,omitempty"`
	To          []Address         `json:"to,omitempty"`
	CC          []Address         `json:"cc,omitempty"`
	BCC         []Address         `json:"bcc,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
}

// Clone returns a copy that shares no slices or maps with o.
func (o *Options) Clone() *Options {
	out := *o
	if o.From != nil {
		from := *o.From
		out.From = &from
	}
	if o.ReplyTo != nil {
		replyTo := *o.ReplyTo
		out.ReplyTo = &replyTo
	}
	out.To = slices.Clone(o.To)
	out.CC = slices.Clone(o.CC)
	out.BCC = slices.Clone(o.BCC)
	out.Attachments = slices.Clone(o.Attachments)
	out.Headers = maps.Clone(o.Headers)
	out.Tags = maps.Clone(o.Tags)
	return &out
}

// Recipients returns all To, CC and BCC addresses in that order.
func (o *Options) Recipients() []Address {
	return slices.Concat(o.To, o.CC, o.BCC)
}

// Result describes an accepted delivery.
type Result struct {
	MessageID string // Provider or generated message identifier
	Response  string // Raw provider response, if any
}
