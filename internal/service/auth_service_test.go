package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

const testSecret = "test-secret"

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	return claims
}

func TestAuthSignupAndLogin(t *testing.T) {
	db := newServiceDB(t)
	users := repository.NewUserRepository(db)
	svc := NewAuthService(users, testValidator(), testSecret, time.Hour, testLogger())
	ctx := context.Background()

	signup, err := svc.Signup(ctx, dto.SignupRequest{Email: "New@Example.com", Password: "s3cretpass", FirstName: "New", LastName: "Student"})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", signup.User.Email)
	require.Equal(t, models.RoleStudent, signup.User.Role)
	require.NotNil(t, signup.User.StudentID)

	claims := parseClaims(t, signup.Token)
	require.Equal(t, "student", claims["role"])
	require.Equal(t, float64(*signup.User.StudentID), claims["student_id"])

	student, err := users.StudentByUserID(ctx, signup.User.UserID)
	require.NoError(t, err)
	require.Regexp(t, `^STU\d{4}[0-9A-F]{6}$`, student.RegistrationNumber)

	_, err = svc.Signup(ctx, dto.SignupRequest{Email: "new@example.com", Password: "s3cretpass", FirstName: "New", LastName: "Student"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "new@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "new@example.com", Password: "s3cretpass"})
	require.NoError(t, err)
	require.Equal(t, signup.User.StudentID, login.User.StudentID)

	me, err := svc.Me(ctx, login.User.UserID)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", me.Email)

	_, err = svc.Me(ctx, 9999)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserServiceCreatesRoleProfiles(t *testing.T) {
	db := newServiceDB(t)
	users := repository.NewUserRepository(db)
	activityRepo := &memoryActivityRepo{}
	svc := NewUserService(users, repository.NewStudentRepository(db), testValidator(), NewActivityService(activityRepo, testLogger()), testLogger())
	auth := NewAuthService(users, testValidator(), testSecret, time.Hour, testLogger())
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.UserCreateRequest{Email: "lect@example.com", Password: "password1", Role: "lecturer", FirstName: "Alan", LastName: "Turing"}, adminSession())
	require.ErrorIs(t, err, apperror.ErrValidation)

	created, err := svc.Create(ctx, dto.UserCreateRequest{Email: "lect@example.com", Password: "password1", Role: "lecturer", FirstName: "Alan", LastName: "Turing", EmployeeID: "EMP042"}, adminSession())
	require.NoError(t, err)
	require.Equal(t, models.RoleLecturer, created.Role)

	login, err := auth.Login(ctx, dto.LoginRequest{Email: "lect@example.com", Password: "password1"})
	require.NoError(t, err)
	require.NotNil(t, login.User.LecturerID)
	require.Equal(t, float64(*login.User.LecturerID), parseClaims(t, login.Token)["lecturer_id"])

	inactive := "inactive"
	_, err = svc.Update(ctx, created.ID, dto.UserUpdateRequest{Status: &inactive}, adminSession())
	require.NoError(t, err)
	_, err = auth.Login(ctx, dto.LoginRequest{Email: "lect@example.com", Password: "password1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	self := Session{UserID: created.ID, Role: models.RoleAdmin}
	require.ErrorIs(t, svc.Delete(ctx, created.ID, self), apperror.ErrValidation)
	other := Session{UserID: created.ID + 100, Role: models.RoleAdmin}
	require.NoError(t, svc.Delete(ctx, created.ID, other))

	require.Contains(t, activityRepo.actions(), "user.created")
}
