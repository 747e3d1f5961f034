package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailkit"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

type sendFlags struct {
	to       []string
	cc       []string
	bcc      []string
	subject  string
	text     string
	html     string
	view     string
	views    string
	data     map[string]string
	priority string
	attach   []string
	timeout  time.Duration
	connect  bool
}

func newSendCommand(rt *runtimeState) *cobra.Command {
	var f sendFlags

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(f.to) == 0 {
				return errors.New("at least one --to address is required")
			}
			if f.view != "" && f.views == "" {
				return errors.New("--view requires --views")
			}

			cfg, err := rt.config()
			if err != nil {
				return err
			}

			opts := []mailkit.MailerOption{mailkit.WithMailerLogger(rt.log)}
			if f.views != "" {
				opts = append(opts, mailkit.WithMailerRenderer(mailer.NewMarkdownRenderer(os.DirFS(f.views))))
			}
			m, err := mailkit.NewMailer(cfg, opts...)
			if err != nil {
				return err
			}

			ctx, cancel := contextWithTimeout(cmd, f.timeout)
			defer cancel()
			defer func() {
				if err := m.Destroy(context.WithoutCancel(ctx)); err != nil {
					rt.log.Warn("failed to close transport", "error", err)
				}
			}()

			if f.connect {
				if err := m.Connect(ctx); err != nil {
					return err
				}
			}

			msg, err := f.build(m)
			if err != nil {
				return err
			}
			result, err := msg.Send(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.output(), "sent %s\n", result.MessageID)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&f.to, "to", nil, "Recipient address (repeatable)")
	cmd.Flags().StringArrayVar(&f.cc, "cc", nil, "Carbon copy address (repeatable)")
	cmd.Flags().StringArrayVar(&f.bcc, "bcc", nil, "Blind carbon copy address (repeatable)")
	cmd.Flags().StringVar(&f.subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&f.text, "text", "", "Plain text body")
	cmd.Flags().StringVar(&f.html, "html", "", "HTML body (ignored when --view is set)")
	cmd.Flags().StringVar(&f.view, "view", "", "Markdown view to render as the HTML body")
	cmd.Flags().StringVar(&f.views, "views", "", "Directory holding views and layouts")
	cmd.Flags().StringToStringVar(&f.data, "data", nil, "View data as key=value pairs")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Priority: high, normal, low")
	cmd.Flags().StringArrayVar(&f.attach, "attach", nil, "File to attach (repeatable)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "Send timeout")
	cmd.Flags().BoolVar(&f.connect, "verify", false, "Verify the transport before sending")
	return cmd
}

func (f *sendFlags) build(m *mailer.Mailer) (*mailer.Message, error) {
	msg := m.Make().Subject(f.subject)
	for _, a := range f.to {
		msg.To(a)
	}
	for _, a := range f.cc {
		msg.CC(a)
	}
	for _, a := range f.bcc {
		msg.BCC(a)
	}
	if f.text != "" {
		msg.Text(f.text)
	}
	if f.html != "" {
		msg.HTML(f.html)
	}
	if f.view != "" {
		data := make(map[string]any, len(f.data))
		for k, v := range f.data {
			data[k] = v
		}
		msg.View(f.view, data)
	}

	switch p := mailer.Priority(f.priority); p {
	case "":
	case mailer.PriorityHigh, mailer.PriorityNormal, mailer.PriorityLow:
		msg.Priority(p)
	default:
		return nil, fmt.Errorf("invalid priority %q", f.priority)
	}

	for _, path := range f.attach {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", path, err)
		}
		msg.Attach(mailer.Attachment{Filename: filepath.Base(path), Content: content})
	}
	return msg, nil
}
