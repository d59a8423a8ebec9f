package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/campus-go-api/internal/observability"
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// StoredFile describes a file accepted by the intake.
type StoredFile struct {
	URL       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Checksum  string
}

// FileIntake validates uploads and hands them to storage. Submissions and
// admission documents share it.
type FileIntake interface {
	Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error)
}

type fileIntake struct {
	storage FileStorage
	logger  zerolog.Logger
	maxSize int64
	allowed map[string]struct{}
	tracer  trace.Tracer
}

// DefaultAllowedMIME lists the document formats accepted by default.
var DefaultAllowedMIME = []string{
	"application/pdf",
	"application/zip",
	"text/plain",
	"image/png",
	"image/jpeg",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NewFileIntake constructs an upload intake. A nil storage rejects every file.
func NewFileIntake(storage FileStorage, maxSizeMB int, allowed []string, logger zerolog.Logger) FileIntake {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedMIME
	}
	set := make(map[string]struct{}, len(allowed))
	for _, m := range allowed {
		set[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &fileIntake{
		storage: storage,
		logger:  logger.With().Str("component", "file_intake").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		allowed: set,
		tracer:  otel.Tracer("github.com/noah-isme/campus-go-api/internal/service/upload"),
	}
}

func (s *fileIntake) Store(ctx context.Context, file *multipart.FileHeader) (StoredFile, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))
	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if file == nil {
		err := validation("file", nil, "file is required")
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation failed")
		return StoredFile{}, err
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return StoredFile{}, ErrStorageUnavailable
	}

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return StoredFile{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return StoredFile{}, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return StoredFile{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return StoredFile{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	fileType := s.match(detected)
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if fileType == "" {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return StoredFile{}, fmt.Errorf("%s: %w", detected.String(), ErrUploadTypeNotAllowed)
	}

	checksum := sha256.Sum256(buf.Bytes())
	sanitizedName := sanitizeFileName(file.Filename)

	url, err := s.storage.Upload(ctx, sanitizedName, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return StoredFile{}, fmt.Errorf("store upload: %w", err)
	}

	span.SetStatus(codes.Ok, "stored")
	s.logger.Debug().Str("file_name", sanitizedName).Str("mime", fileType).Msg("file stored")

	return StoredFile{
		URL:       url,
		FileName:  sanitizedName,
		MimeType:  fileType,
		SizeBytes: int64(buf.Len()),
		Checksum:  hex.EncodeToString(checksum[:]),
	}, nil
}

// match returns the first allowed type among the detected type and its parents.
func (s *fileIntake) match(detected *mimetype.MIME) string {
	for m := detected; m != nil; m = m.Parent() {
		base := strings.ToLower(strings.SplitN(m.String(), ";", 2)[0])
		if _, ok := s.allowed[base]; ok {
			return base
		}
	}
	return ""
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}
