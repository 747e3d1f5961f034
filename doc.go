// Package mailkit is an HTTP application host with an integrated mailer.
//
// The mailer's transport is verified before the server starts listening and
// closed after it stops. Handlers reach the shared Mailer through
// Context.Mail.
//
// # Quick Start
//
//	cfg, err := mailkit.LoadConfig("MAIL")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m, err := mailkit.NewMailer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := mailkit.New(
//	    mailkit.WithMail(m, cfg.Auto),
//	    mailkit.WithHandlers(signup.New()),
//	    mailkit.WithHealthChecks(),
//	)
//
//	if err := app.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sending
//
//	func (h *Signup) create(c mailkit.Context) error {
//	    _, err := c.Mail().Make().
//	        To(form.Email, form.Name).
//	        Subject("Welcome").
//	        View("welcome.md", form).
//	        Send(c)
//	    return err
//	}
//
// # Transports
//
// OpenTransport picks the transport from the connection URL scheme:
//
//   - smtp:// and smtps:// deliver through an SMTP server
//   - resend:// delivers through the Resend API
//   - memory:// records messages in memory
//
// WithMetrics and WithTracing wrap the transport with Prometheus metrics and
// OpenTelemetry spans.
//
// # Background Delivery
//
// WithMailQueue runs a queue such as pkg/mailer/queue next to the server.
// It starts after the transport is verified and stops before the transport
// is closed.
//
// # Configuration
//
// LoadConfig reads PREFIX_CONNECTION, PREFIX_FROM, PREFIX_REPLY_TO,
// PREFIX_AUTO_CONNECT and PREFIX_AUTO_DESTROY. Both auto flags default to
// true. Invalid settings return an error wrapping ErrInvalidConfig.
package mailkit
