package mailer

import "context"

// Message accumulates a single outbound email through chained calls.
// A Message is not safe for concurrent mutation; obtain one per goroutine
// via Mailer.Make.
type Message struct {
	mailer  *Mailer
	options *Options

	view     string
	viewData any
	hasView  bool
}

// From sets the sender, replacing any previous one.
func (m *Message) From(address string, name ...string) *Message {
	from := NewAddress(address, name...)
	m.options.From = &from
	return m
}

// ReplyTo sets the reply-to address, replacing any previous one.
func (m *Message) ReplyTo(address string, name ...string) *Message {
	replyTo := NewAddress(address, name...)
	m.options.ReplyTo = &replyTo
	return m
}

// To appends a recipient.
func (m *Message) To(address string, name ...string) *Message {
	m.options.To = append(m.options.To, NewAddress(address, name...))
	return m
}

// CC appends a carbon copy recipient.
func (m *Message) CC(address string, name ...string) *Message {
	m.options.CC = append(m.options.CC, NewAddress(address, name...))
	return m
}

// BCC appends a blind carbon copy recipient.
func (m *Message) BCC(address string, name ...string) *Message {
	m.options.BCC = append(m.options.BCC, NewAddress(address, name...))
	return m
}

// Attach appends an attachment.
func (m *Message) Attach(a Attachment) *Message {
	m.options.Attachments = append(m.options.Attachments, a)
	return m
}

// Subject sets the subject line.
func (m *Message) Subject(subject string) *Message {
	m.options.Subject = subject
	return m
}

// Priority sets the delivery priority.
func (m *Message) Priority(p Priority) *Message {
	m.options.Priority = p
	return m
}

// Text sets the plain text body.
func (m *Message) Text(body string) *Message {
	m.options.Text = body
	return m
}

// HTML sets the HTML body.
// A view set with View replaces this value at send time.
func (m *Message) HTML(body string) *Message {
	m.options.HTML = body
	return m
}

// View records a view to render into the HTML body when the message is sent.
// Nothing is rendered here. Nil data is replaced with an empty map.
func (m *Message) View(path string, data any) *Message {
	if data == nil {
		data = map[string]any{}
	}
	m.view = path
	m.viewData = data
	m.hasView = true
	return m
}

// Header sets a custom header.
func (m *Message) Header(key, value string) *Message {
	if m.options.Headers == nil {
		m.options.Headers = make(map[string]string)
	}
	m.options.Headers[key] = value
	return m
}

// Tag adds a tag. Pass struct{}{} for a presence-only tag.
func (m *Message) Tag(name string, value any) *Message {
	if m.options.Tags == nil {
		m.options.Tags = make(Tags)
	}
	m.options.Tags[name] = value
	return m
}

// Options returns a copy of the options accumulated so far.
// The deferred view is not resolved.
func (m *Message) Options() *Options {
	return m.options.Clone()
}

// Draft returns a snapshot of the message with its view still unresolved.
func (m *Message) Draft() Draft {
	d := Draft{Options: m.options.Clone()}
	if m.hasView {
		d.View = m.view
		d.ViewData = m.viewData
	}
	return d
}

// Send renders the view (if any) and hands the message to the transport.
// The builder may be modified and sent again afterwards; each call works
// on its own snapshot.
func (m *Message) Send(ctx context.Context) (*Result, error) {
	return m.mailer.SendDraft(ctx, m.Draft())
}
