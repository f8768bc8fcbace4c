package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/backup"
)

func newBackupCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export and import queues, favorites and path filters",
	}
	cmd.AddCommand(newBackupExportCmd(e), newBackupImportCmd(e))
	return cmd
}

func (s *session) backupService(e *env) *backup.Service {
	return backup.New(s.store, s.queue, backup.WithLogger(e.logger))
}

func parseSection(name string) (backup.Section, error) {
	for _, sec := range backup.Sections {
		if strings.EqualFold(string(sec), name) {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: %q", backup.ErrUnknownSection, name)
}

func sectionNames() string {
	names := make([]string, len(backup.Sections))
	for i, sec := range backup.Sections {
		names[i] = string(sec)
	}
	return strings.Join(names, ", ")
}

func newBackupExportCmd(e *env) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write a backup to a file (default: stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withSession(func(s *session) error {
				svc := s.backupService(e)

				var buf bytes.Buffer
				var report backup.Report
				if section != "" {
					sec, err := parseSection(section)
					if err != nil {
						return err
					}
					if err := svc.ExportSection(cmd.Context(), &buf, sec); err != nil {
						return err
					}
				} else {
					var err error
					if report, err = svc.Export(cmd.Context(), &buf); err != nil {
						return err
					}
				}

				if err := writeOutput(cmd.OutOrStdout(), args, buf.Bytes()); err != nil {
					return err
				}
				if len(args) == 1 && args[0] != "-" {
					printReport(cmd.ErrOrStderr(), report)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "export one section only ("+sectionNames()+")")
	return cmd
}

func newBackupImportCmd(e *env) *cobra.Command {
	var section string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup (\"-\" reads stdin)",
		Long: `Restore a backup written by "cadence backup export".

Each section imports on its own: a damaged section is reported and
skipped while the others are restored. Importing a queue replaces the
current queue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			return e.withSession(func(s *session) error {
				svc := s.backupService(e)
				if section != "" {
					sec, err := parseSection(section)
					if err != nil {
						return err
					}
					err = svc.ImportSection(cmd.Context(), in, sec)
					if err != nil && !errors.Is(err, backup.ErrNothingToImport) {
						return err
					}
					printReport(cmd.OutOrStdout(), backup.Report{resultFor(sec, err)})
					return nil
				}

				report, err := svc.Import(cmd.Context(), in)
				if err != nil {
					return err
				}
				if e.flags.jsonOut {
					return writeJSON(cmd.OutOrStdout(), reportJSON(report))
				}
				printReport(cmd.OutOrStdout(), report)
				if report.Failed() {
					return errors.New("some sections failed to import")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&section, "section", "", "import one section only ("+sectionNames()+")")
	return cmd
}

func resultFor(sec backup.Section, err error) backup.Result {
	switch {
	case err == nil:
		return backup.Result{Section: sec, Status: backup.StatusDone}
	case errors.Is(err, backup.ErrNothingToImport):
		return backup.Result{Section: sec, Status: backup.StatusEmpty}
	default:
		return backup.Result{Section: sec, Status: backup.StatusFailed, Err: err}
	}
}

func writeOutput(stdout io.Writer, args []string, data []byte) error {
	if len(args) == 0 || args[0] == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(args[0], data, 0o644)
}

func openInput(stdin io.Reader, name string) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func printReport(w io.Writer, report backup.Report) {
	for _, res := range report {
		style := lipgloss.NewStyle()
		switch res.Status {
		case backup.StatusEmpty:
			style = mutedStyle
		case backup.StatusFailed:
			style = warnStyle
		}
		line := fmt.Sprintf("%-14s %s", res.Section, res.Status)
		if res.Err != nil && res.Status == backup.StatusFailed {
			line += ": " + res.Err.Error()
		}
		fmt.Fprintln(w, style.Render(line))
	}
}

type resultJSON struct {
	Section string `json:"section"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func reportJSON(report backup.Report) []resultJSON {
	out := make([]resultJSON, len(report))
	for i, res := range report {
		out[i] = resultJSON{Section: string(res.Section), Status: res.Status.String()}
		if res.Err != nil && res.Status == backup.StatusFailed {
			out[i].Error = res.Err.Error()
		}
	}
	return out
}
