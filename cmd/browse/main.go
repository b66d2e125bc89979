package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/lastara-storefront/internal/config"
	"github.com/example/lastara-storefront/internal/logging"
	"github.com/example/lastara-storefront/internal/storefront/client"
	"github.com/example/lastara-storefront/internal/storefront/tui"
)

type options struct {
	apiURL     string
	configPath string
	logFile    string
	token      string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "browse",
		Short: "Browse the Lastara catalog in the terminal",
		Long: `Terminal storefront for the Lastara catalog store.

Shows the hero carousel, the filterable product list and the WhatsApp
newsletter form. Logs go to --log-file so they never draw over the screen.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", config.GetEnv("STOREFRONT_API", "http://localhost:8080"), "catalog store base URL")
	flags.StringVar(&opts.configPath, "config", "", "storefront YAML overriding the built-in settings")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to this file (default: discard)")
	flags.StringVar(&opts.token, "recaptcha-token", config.GetEnv("RECAPTCHA_TOKEN", ""), "verification token sent with subscriptions")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")

	root.AddCommand(newSubscribeCmd(opts))
	return root
}

func newSubscribeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe PHONE",
		Short: "Subscribe a WhatsApp number to new-arrival updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewFile("browse", opts.logFile, opts.debug)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			err = client.New(opts.apiURL, logger).Subscribe(ctx, args[0], opts.token)
			if err != nil {
				logger.Warn("subscribe failed", zap.Error(err))
				return errors.New(client.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), client.MsgSubscribed)
			return nil
		},
	}
}

func runBrowse(opts *options) error {
	storefront, err := config.LoadStorefront(opts.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewFile("browse", opts.logFile, opts.debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model := tui.NewModel(tui.Options{
		Source:         client.New(opts.apiURL, logger),
		Storefront:     storefront,
		RecaptchaToken: opts.token,
		Logger:         logger,
	})
	defer model.Close()

	logger.Info("starting storefront", zap.String("api", opts.apiURL))
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err = program.Run()
	return err
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
