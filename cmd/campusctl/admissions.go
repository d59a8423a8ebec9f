package main

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/noah-isme/campus-go-api/internal/database"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/repository"
	"github.com/noah-isme/campus-go-api/internal/service"
)

func newAdmissionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admissions",
		Short: "Admission maintenance",
	}
	cmd.AddCommand(newReconcileCommand(a))
	return cmd
}

func newReconcileCommand(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Create missing accounts and enrollments for approved admissions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				result dto.ReconcileResult
				err    error
			)
			if remote {
				result, err = a.client().ReconcileAdmissions(cmd.Context())
			} else {
				result, err = a.reconcileLocal(cmd)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "checked %d admissions: %d users, %d students, %d enrollments created, %d completed\n",
				result.Checked, result.UsersCreated, result.StudentsLinked, result.Enrollments, result.Completed)
			for _, e := range result.Errors {
				fmt.Fprintln(out, e)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d admissions could not be reconciled", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "run through the API instead of the database")
	return cmd
}

func (a *app) reconcileLocal(cmd *cobra.Command) (dto.ReconcileResult, error) {
	if a.cfg.DatabaseURL == "" {
		return dto.ReconcileResult{}, errors.New("database url must be provided, or use --remote")
	}
	db, err := database.Connect(a.cfg.DatabaseDriver, a.cfg.DatabaseURL)
	if err != nil {
		return dto.ReconcileResult{}, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), a.logger)
	enrollments := service.NewEnrollmentService(service.EnrollmentDependencies{
		Enrollments: repository.NewEnrollmentRepository(db),
		Admissions:  repository.NewAdmissionRepository(db),
		Students:    repository.NewStudentRepository(db),
		Courses:     repository.NewCourseRepository(db),
	}, validate, activity, nil, a.logger)

	return enrollments.Reconcile(cmd.Context(), service.SystemSession)
}
