package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStudentsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "students",
		Short: "Student lookups",
	}
	cmd.AddCommand(newStudentsListCommand(a), newStudentsMeCommand(a))
	return cmd
}

func newStudentsListCommand(a *app) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the students taught by the token's lecturer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			students, err := a.client().LecturerStudents(cmd.Context(), search)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range students {
				average := "-"
				if s.AverageScore != nil {
					average = fmt.Sprintf("%.1f", *s.AverageScore)
				}
				fmt.Fprintf(out, "%s\t%s %s\t%s\t%d courses\t%s\n",
					s.RegistrationNumber, s.FirstName, s.LastName, s.Email, s.CoursesEnrolled, average)
			}
			fmt.Fprintf(out, "%d students\n", len(students))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name, email or registration number")
	return cmd
}

func newStudentsMeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the token's student profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := a.client().MyProfile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s)\n", profile.Profile.FirstName, profile.Profile.LastName, profile.Profile.RegistrationNumber)
			fmt.Fprintf(out, "gpa %.2f, %d courses, %d of %d submissions graded\n",
				profile.Academics.GPA, profile.Academics.TotalCourses, profile.Academics.GradedSubmissions, profile.Academics.TotalSubmissions)
			return nil
		},
	}
}
