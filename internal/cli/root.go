// Package cli implements the frontdesk command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"frontdesk/internal/config"
	"frontdesk/internal/core"
	"frontdesk/internal/desk"
	"frontdesk/internal/infra/blob"
	blobcore "frontdesk/internal/infra/blob/core"
	"frontdesk/internal/infra/notify"
	"frontdesk/internal/infra/persistence"
	"frontdesk/pkg/domain"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string
	ConfigPath string
	Actor      string

	// Open builds a session; tests swap it for an in-memory one.
	Open func(ctx context.Context, opts *RootOptions) (*Session, error)
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Session is one opened desk plus the collaborators commands may need.
type Session struct {
	Desk   *desk.Desk
	Config config.Config
	// Blob opens the export blob store on first use.
	Blob    func(ctx context.Context) (blobcore.Store, error)
	closers []func() error
}

// Close releases gateway and broker connections.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewRootCommand creates the root command for the frontdesk CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{Open: OpenSession})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frontdesk",
		Short: "Hotel front desk",
		Long:  "Room lifecycle, movement ledger and stock for a small hotel front desk.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (defaults to $"+config.EnvConfigFile+")")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "", "name recorded on movements")

	cmd.AddCommand(NewRoomCommand(opts))
	cmd.AddCommand(NewReserveCommand(opts))
	cmd.AddCommand(NewCheckInCommand(opts))
	cmd.AddCommand(NewCheckOutCommand(opts))
	cmd.AddCommand(NewCancelCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewMovementsCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewStockCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// OpenSession loads configuration and wires the configured gateway, logger,
// metrics and publisher into a desk.
func OpenSession(ctx context.Context, opts *RootOptions) (*Session, error) {
	path := opts.ConfigPath
	if path == "" {
		path = os.Getenv(config.EnvConfigFile)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	zl, err := config.NewLogger(cfg.Log, cfg.Service)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to build logger", err)
	}
	sess := &Session{Config: cfg}
	sess.closers = append(sess.closers, func() error { _ = zl.Sync(); return nil })

	gateway, closeGateway, err := persistence.Open(ctx, cfg)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	sess.closers = append(sess.closers, closeGateway)

	recorder, err := core.NewPrometheusRecorder(prometheus.NewRegistry())
	if err != nil {
		_ = sess.Close()
		return nil, WrapExitError(ExitCommandError, "failed to register metrics", err)
	}

	deps := desk.Deps{
		Gateway: gateway,
		Logger:  core.NewZapLogger(zl),
		Options: []core.Option{
			core.WithMetrics(recorder),
			core.WithProximityWindow(cfg.Desk.ProximityWindow),
		},
	}
	if cfg.NATS.URL != "" {
		pub, err := notify.Connect(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			_ = sess.Close()
			return nil, WrapExitError(ExitCommandError, "failed to connect to nats", err)
		}
		deps.Publisher = pub
		sess.closers = append(sess.closers, func() error { pub.Close(); return nil })
	}
	d, err := desk.Open(ctx, deps)
	if err != nil {
		_ = sess.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open desk", err)
	}
	sess.Desk = d
	if opts.Actor == "" {
		opts.Actor = cfg.Desk.Actor
	}

	var store blobcore.Store
	sess.Blob = func(ctx context.Context) (blobcore.Store, error) {
		if store != nil {
			return store, nil
		}
		s, err := blob.Open(ctx, cfg.Blob)
		if err != nil {
			return nil, err
		}
		store = s
		return store, nil
	}
	return sess, nil
}

// withSession opens a session, runs fn and closes the session.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, sess *Session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := opts.Open(ctx, opts)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return WrapExitError(ExitCommandError, "failed to open desk", err)
	}
	defer func() { _ = sess.Close() }()
	return fn(ctx, sess)
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

func actionOptions(opts *RootOptions, extra ...core.ActionOption) []core.ActionOption {
	out := make([]core.ActionOption, 0, len(extra)+1)
	if opts.Actor != "" {
		out = append(out, core.WithActor(opts.Actor))
	}
	return append(out, extra...)
}

// dateTimeOr fills blank date and time from the desk clock.
func dateTimeOr(sess *Session, date, clock string) (string, string) {
	now := sess.Desk.Service().Clock().Now()
	if strings.TrimSpace(date) == "" {
		date = now.Format(domain.DateLayout)
	}
	if strings.TrimSpace(clock) == "" {
		clock = now.Format(domain.TimeLayout)
	}
	return date, clock
}

func parseStatus(raw string) (domain.RoomStatus, error) {
	status, ok := domain.ParseRoomStatus(raw)
	if !ok {
		return "", NewExitError(ExitCommandError, fmt.Sprintf("unknown status %q", raw))
	}
	return status, nil
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	format, _ := cmd.PersistentFlags().GetString("format")
	f := &OutputFormatter{Format: format, Writer: cmd.ErrOrStderr()}
	if format != "json" {
		f.Format = "text"
	}
	_ = f.Error(err)
	return GetExitCode(err)
}
