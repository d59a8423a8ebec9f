package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/campus-go-api/internal/apperror"
)

var (
	// ErrForbidden indicates the session may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidCredentials indicates a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates the email already belongs to an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrStorageUnavailable indicates no file storage is configured.
	ErrStorageUnavailable = errors.New("file storage is not configured")
)

// storeError maps a repository error to the service error vocabulary.
func storeError(op, entity string, id interface{}, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFoundError{Entity: entity, ID: id}
	}
	return apperror.Persistence(op, err)
}

func validation(field string, value interface{}, message string) error {
	return apperror.ValidationError{Field: field, Value: value, Message: message}
}
