package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailkit"
	"github.com/dmitrymomot/mailkit/pkg/logger"
	"github.com/dmitrymomot/mailkit/pkg/mailer"
)

type runtimeState struct {
	prefix     string
	connection string
	logLevel   string
	logFormat  string
	writer     io.Writer
	log        *slog.Logger
}

func newRootCommand(w io.Writer) *cobra.Command {
	rt := &runtimeState{writer: w}

	root := &cobra.Command{
		Use:           "mailkit",
		Short:         "Verify mail transports and send messages",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.NewFromConfig(logger.Config{
				Level:  rt.logLevel,
				Format: rt.logFormat,
			}, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rt.log = log
			return nil
		},
	}
	root.SetOut(w)

	root.PersistentFlags().StringVar(&rt.prefix, "prefix", "MAIL", "Environment variable prefix")
	root.PersistentFlags().StringVar(&rt.connection, "connection", "", "Transport URL override")
	root.PersistentFlags().StringVar(&rt.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&rt.logFormat, "log-format", "text", "Log format: json, text, dev")

	root.AddCommand(
		newVerifyCommand(rt),
		newSendCommand(rt),
	)
	return root
}

// config loads settings from the environment and applies flag overrides.
func (rt *runtimeState) config() (mailkit.Config, error) {
	s, err := mailer.LoadSettings(rt.prefix)
	if err != nil {
		return mailkit.Config{}, err
	}
	if rt.connection != "" {
		s.Connection = rt.connection
	}
	return mailkit.NewConfig(s)
}

func (rt *runtimeState) output() io.Writer {
	if rt.writer == nil {
		return os.Stdout
	}
	return rt.writer
}
