package uploads

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload_ForwardsMultipartImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		file, header, err := r.FormFile("image")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "photo.png", header.Filename)
		assert.Equal(t, "pixels", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"url":"https://img.example/photo.png"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/1/upload", "secret")
	url, err := client.Upload(context.Background(), "photo.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/photo.png", url)
}

func TestUpload_HostError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Invalid API v1 key."}}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad").Upload(context.Background(), "a.png", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid API v1 key.")
}

func TestUpload_NotConfigured(t *testing.T) {
	_, err := NewClient("", "").Upload(context.Background(), "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNotConfigured)
}
