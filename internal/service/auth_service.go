package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
	"github.com/noah-isme/campus-go-api/internal/dto"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// AuthService signs users up and in.
type AuthService interface {
	Signup(ctx context.Context, req dto.SignupRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error)
	Me(ctx context.Context, userID uint) (dto.SessionProfile, error)
}

type authService struct {
	users     repository.UserRepository
	validator *validator.Validate
	secret    []byte
	ttl       time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService constructs the auth service. Tokens are HS256 signed with secret.
func NewAuthService(users repository.UserRepository, validate *validator.Validate, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &authService{
		users:     users,
		validator: validate,
		secret:    []byte(secret),
		ttl:       ttl,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Signup(ctx context.Context, req dto.SignupRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, apperror.Persistence("lookup user", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleStudent,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Status:       models.StatusActive,
	}
	student := models.Student{
		RegistrationNumber: signupRegistrationNumber(s.now()),
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Email:              email,
		Status:             models.StatusActive,
	}
	if err := s.users.CreateWithProfile(ctx, &user, &student); err != nil {
		return dto.AuthResponse{}, apperror.Persistence("create user", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("student signed up")
	return s.issue(user, &student.ID, nil, nil)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, apperror.Persistence("lookup user", err)
	}
	if user.Status != models.StatusActive {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	profile, err := s.profile(ctx, user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return s.issue(user, profile.StudentID, profile.LecturerID, profile.AdminID)
}

func (s *authService) Me(ctx context.Context, userID uint) (dto.SessionProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.SessionProfile{}, storeError("get user", "user", userID, err)
	}
	return s.profile(ctx, user)
}

// profile resolves the role-specific id. A missing profile row is not an error.
func (s *authService) profile(ctx context.Context, user models.User) (dto.SessionProfile, error) {
	var studentID, lecturerID, adminID *uint
	var err error

	switch user.Role {
	case models.RoleStudent:
		var student models.Student
		if student, err = s.users.StudentByUserID(ctx, user.ID); err == nil {
			studentID = &student.ID
		}
	case models.RoleLecturer:
		var lecturer models.Lecturer
		if lecturer, err = s.users.LecturerByUserID(ctx, user.ID); err == nil {
			lecturerID = &lecturer.ID
		}
	case models.RoleAdmin:
		var admin models.Admin
		if admin, err = s.users.AdminByUserID(ctx, user.ID); err == nil {
			adminID = &admin.ID
		}
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.SessionProfile{}, apperror.Persistence("lookup profile", err)
	}

	return dto.NewSessionProfile(user, studentID, lecturerID, adminID), nil
}

func (s *authService) issue(user models.User, studentID, lecturerID, adminID *uint) (dto.AuthResponse, error) {
	now := s.now()
	expires := now.Add(s.ttl)

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  expires.Unix(),
	}
	if studentID != nil {
		claims["student_id"] = *studentID
	}
	if lecturerID != nil {
		claims["lecturer_id"] = *lecturerID
	}
	if adminID != nil {
		claims["admin_id"] = *adminID
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return dto.AuthResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      dto.NewSessionProfile(user, studentID, lecturerID, adminID),
	}, nil
}

// HashPassword bcrypt-hashes a password with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func signupRegistrationNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("STU%d%s", now.Year(), suffix)
}
