package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveImage(t *testing.T, contentType string, body []byte) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestDownloadFromTelegramFileID(t *testing.T) {
	ts := serveImage(t, "image/jpeg", []byte("123"))

	var requested string
	getFileDirectURL := func(fileID string) (string, error) {
		requested = fileID
		return ts.URL + "/" + fileID + ".jpg", nil
	}

	data, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("123"), data)
	assert.Equal(t, "foo", requested)
}

func TestDownloadFromTelegramFileID_URLResolutionError(t *testing.T) {
	getFileDirectURL := func(fileID string) (string, error) {
		return "", errors.New("no such file")
	}

	_, err := NewImageDownloader().DownloadFromTelegramFileID(context.Background(), getFileDirectURL, "foo")
	assert.ErrorContains(t, err, "failed to get file URL")
}

func TestDownloadFromURL(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47}

	tests := []struct {
		name        string
		contentType string
		body        []byte
		maxSize     int64
		wantErr     string
	}{
		{name: "png", contentType: "image/png", body: png, maxSize: DefaultMaxImageSize},
		{name: "octet stream", contentType: "application/octet-stream", body: png, maxSize: DefaultMaxImageSize},
		{name: "html", contentType: "text/html", body: []byte("<html></html>"), maxSize: DefaultMaxImageSize, wantErr: "invalid content type"},
		{name: "too large", contentType: "image/jpeg", body: make([]byte, 100), maxSize: 50, wantErr: "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := serveImage(t, tt.contentType, tt.body)

			data, err := NewImageDownloader().WithMaxSize(tt.maxSize).DownloadFromURL(context.Background(), ts.URL)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, data)
		})
	}
}

func TestDownloadFromURL_ContentLengthExceedsLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "999999999")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	_, err := NewImageDownloader().WithMaxSize(1000).DownloadFromURL(context.Background(), ts.URL)
	assert.ErrorContains(t, err, "too large")
}

func TestDownloadFromURL_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := NewImageDownloader().DownloadFromURL(context.Background(), ts.URL)
	assert.ErrorContains(t, err, "status 404")
}

func TestDownloadFromURL_ContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should have been canceled")
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageDownloader().DownloadFromURL(ctx, ts.URL)
	assert.Error(t, err)
}
