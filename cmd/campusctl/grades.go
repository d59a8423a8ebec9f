package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/pkg/client"
)

func newGradesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grades",
		Short: "Grade templates and bulk uploads",
	}
	cmd.AddCommand(newTemplateCommand(a), newUploadCommand(a))
	return cmd
}

func newTemplateCommand(a *app) *cobra.Command {
	var (
		subjectID uint
		out       string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the grade template for a subject",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subjectID == 0 {
				return errors.New("--subject is required")
			}
			if format == "" {
				format = strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), ".")
			}

			body, err := a.client().Template(cmd.Context(), subjectID, format)
			if err != nil {
				return fmt.Errorf("download template: %w", err)
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(out, body, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "template for subject %d written to %s\n", subjectID, out)
			return nil
		},
	}

	cmd.Flags().UintVar(&subjectID, "subject", 0, "subject id")
	cmd.Flags().StringVar(&out, "out", "", "output file, stdout when empty")
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx, inferred from --out")
	return cmd
}

func newUploadCommand(a *app) *cobra.Command {
	var (
		subjectID uint
		file      string
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Parse a grade file locally and apply it record by record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if subjectID == 0 || file == "" {
				return errors.New("--subject and --file are required")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			api := a.client()

			roster, err := api.Roster(ctx, subjectID)
			if err != nil {
				return fmt.Errorf("load roster: %w", err)
			}

			handle, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open grade file: %w", err)
			}
			defer handle.Close()

			parsed := parseGradeFile(handle, file, subjectID, client.KnownStudents(roster))
			if !parsed.OK() {
				for _, e := range parsed.Errors {
					fmt.Fprintln(out, e.Error())
				}
				return errors.New("grade file rejected")
			}

			a.logger.Info().Uint("subject_id", subjectID).Int("records", len(parsed.Records)).Msg("applying grades")
			result := grading.NewBulkApplier(api).Apply(ctx, subjectID, parsed.Records, func(p grading.Progress) {
				fmt.Fprintf(out, "\r%d/%d processed", p.Attempted, p.Total)
			})
			fmt.Fprintln(out)

			for _, e := range result.Errors {
				fmt.Fprintln(out, e.Message)
			}
			fmt.Fprintf(out, "%d of %d grades saved\n", result.Completed, result.Total)
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d grades failed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().UintVar(&subjectID, "subject", 0, "subject id")
	cmd.Flags().StringVar(&file, "file", "", "CSV or XLSX grade file")
	return cmd
}

func parseGradeFile(r io.Reader, name string, subjectID uint, known []grading.KnownStudent) grading.ParseResult {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return grading.ParseBulkXLSX(r, subjectID, known)
	}
	return grading.ParseBulkCSV(r, subjectID, known)
}
