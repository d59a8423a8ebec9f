package cloudinary

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	params uploader.UploadParams
	body   string
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	if r, ok := file.(io.Reader); ok {
		data, _ := io.ReadAll(r)
		f.body = string(data)
	}
	return f.result, f.err
}

func TestUploadReturnsSecureURL(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{PublicID: "campus/essay", SecureURL: "https://res.cloudinary.com/demo/essay.pdf"}}
	storage := newStorage(fake, "/campus/uploads/", zerolog.Nop())

	url, err := storage.Upload(context.Background(), "My Essay (final).pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.com/demo/essay.pdf", url)
	require.Equal(t, "campus/uploads", fake.params.Folder)
	require.Equal(t, "auto", fake.params.ResourceType)
	require.Regexp(t, regexp.MustCompile(`^my-essay--final-[0-9a-f]{8}$`), fake.params.PublicID)
	require.Equal(t, "%PDF-1.4", fake.body)
}

func TestUploadSurfacesErrors(t *testing.T) {
	storage := newStorage(&fakeUploader{err: errors.New("timeout")}, "", zerolog.Nop())
	_, err := storage.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	require.ErrorContains(t, err, "timeout")

	storage = newStorage(&fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid signature"}}}, "", zerolog.Nop())
	_, err = storage.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	require.ErrorContains(t, err, "Invalid signature")
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.ErrorIs(t, err, ErrNotConfigured)
	require.False(t, Config{CloudName: "demo", APIKey: "k"}.Enabled())
}

func TestPublicIDFallback(t *testing.T) {
	require.Regexp(t, `^upload-[0-9a-f]{8}$`, publicID("???.png"))
}
