package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"frontdesk/internal/core"
	"frontdesk/internal/export"
	"frontdesk/pkg/domain"
)

type exportFlags struct {
	xlsx   string
	upload string
}

// NewExportCommand writes rooms or movements as JSON or xlsx.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export rooms or movements",
		Long: `Export rooms or movements. Without flags the records are written to stdout
as JSON. --xlsx writes a workbook to a file; --upload stores the workbook in
the configured blob store and prints a download link when one can be signed.`,
	}
	cmd.AddCommand(newExportSubcommand(opts, "rooms", func(svc *core.Service) (any, func() ([]byte, error)) {
		rooms := svc.ExportRooms()
		return rooms, func() ([]byte, error) { return export.RoomsWorkbook(rooms) }
	}))
	cmd.AddCommand(newExportSubcommand(opts, "movements", func(svc *core.Service) (any, func() ([]byte, error)) {
		records := svc.ExportMovements()
		return records, func() ([]byte, error) { return export.MovementsWorkbook(records) }
	}))
	return cmd
}

func newExportSubcommand(opts *RootOptions, name string, collect func(*core.Service) (any, func() ([]byte, error))) *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:   name,
		Short: "Export " + name,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				records, workbook := collect(sess.Desk.Service())
				if flags.xlsx == "" && flags.upload == "" {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(records)
				}
				data, err := workbook()
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to build workbook", err)
				}
				result := map[string]string{}
				if flags.xlsx != "" {
					if err := os.WriteFile(flags.xlsx, data, 0o600); err != nil {
						return WrapExitError(ExitCommandError, "failed to write workbook", err)
					}
					result["file"] = flags.xlsx
				}
				if flags.upload != "" {
					store, err := sess.Blob(ctx)
					if err != nil {
						return WrapExitError(ExitCommandError, "failed to open blob store", err)
					}
					info, err := export.Upload(ctx, store, flags.upload, data)
					if err != nil {
						return WrapExitError(ExitCommandError, "failed to upload workbook", err)
					}
					result["key"] = info.Key
					if info.URL != "" {
						result["url"] = info.URL
					}
				}
				return formatter(cmd, opts).Success(result, func(w io.Writer) {
					if f, ok := result["file"]; ok {
						fmt.Fprintf(w, "Wrote %s\n", f)
					}
					if k, ok := result["key"]; ok {
						fmt.Fprintf(w, "Uploaded %s\n", k)
					}
					if u, ok := result["url"]; ok {
						fmt.Fprintf(w, "Download: %s\n", u)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&flags.xlsx, "xlsx", "", "write an xlsx workbook to this path")
	cmd.Flags().StringVar(&flags.upload, "upload", "", "upload an xlsx workbook under this blob key")
	return cmd
}

// NewImportCommand loads rooms or movements from a JSON file.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import rooms or movements from JSON",
		Long: `Import records from a JSON array. Invalid records are skipped and reported.
Importing rooms replaces the room set; importing movements merges by id.`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rooms <file>",
		Short: "Replace the room set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rooms []domain.Room
			if err := readJSON(args[0], &rooms); err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				report, err := sess.Desk.ImportRooms(ctx, rooms)
				return reportImport(cmd, opts, "rooms", report, err)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "movements <file>",
		Short: "Merge movement records by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []domain.MovementRecord
			if err := readJSON(args[0], &records); err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, sess *Session) error {
				report, err := sess.Desk.ImportMovements(ctx, records)
				return reportImport(cmd, opts, "movements", report, err)
			})
		},
	})
	return cmd
}

func readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read import file", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return WrapExitError(ExitCommandError, "failed to parse import file", err)
	}
	return nil
}

func reportImport(cmd *cobra.Command, opts *RootOptions, what string, report core.ImportReport, err error) error {
	if err := classify("failed to import "+what, err); err != nil {
		return err
	}
	return formatter(cmd, opts).Success(report, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d %s, rejected %d\n", report.Accepted, what, len(report.Rejected))
		for _, r := range report.Rejected {
			fmt.Fprintf(w, "  #%d %s: %s\n", r.Index, r.ID, r.Reason)
		}
	})
}
