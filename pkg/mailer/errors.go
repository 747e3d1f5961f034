package mailer

import "errors"

var (
	// ErrInvalidConfig indicates the mail configuration failed validation.
	ErrInvalidConfig = errors.New("mailer: invalid configuration")

	// ErrConnectionFailed indicates the transport could not be verified.
	ErrConnectionFailed = errors.New("mailer: transport connection failed")

	// ErrRenderFailed indicates view rendering failed.
	ErrRenderFailed = errors.New("mailer: failed to render view")

	// ErrSendFailed indicates the transport rejected or could not deliver a message.
	ErrSendFailed = errors.New("mailer: failed to send email")

	// ErrTransportClosed indicates the transport was destroyed and cannot be used.
	ErrTransportClosed = errors.New("mailer: transport is closed")

	// ErrNoRenderer indicates a view was requested but no renderer is configured.
	ErrNoRenderer = errors.New("mailer: view renderer not configured")

	// ErrTemplateNotFound indicates the template file was not found.
	ErrTemplateNotFound = errors.New("mailer: template not found")

	// ErrLayoutNotFound indicates the layout file was not found.
	ErrLayoutNotFound = errors.New("mailer: layout not found")

	// ErrInvalidFrontmatter indicates invalid YAML frontmatter.
	ErrInvalidFrontmatter = errors.New("mailer: invalid frontmatter")

	// ErrViewNotFound indicates no component is registered under the view name.
	ErrViewNotFound = errors.New("mailer: view not found")
)
