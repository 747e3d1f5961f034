package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailkit"
)

func newVerifyCommand(rt *runtimeState) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify the configured transport can connect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := rt.config()
			if err != nil {
				return err
			}
			m, err := mailkit.NewMailer(cfg, mailkit.WithMailerLogger(rt.log))
			if err != nil {
				return err
			}

			ctx, cancel := contextWithTimeout(cmd, timeout)
			defer cancel()

			verifyErr := m.Connect(ctx)
			if err := errors.Join(verifyErr, m.Destroy(ctx)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(rt.output(), "%s transport verified\n", cfg.Connection.Scheme)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Verification timeout")
	return cmd
}
