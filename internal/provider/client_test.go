package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filvault/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiURL, token string, gateways ...string) *Client {
	cfg := config.Default()
	cfg.Provider.APIURL = apiURL
	cfg.Provider.Token = token
	if len(gateways) > 0 {
		cfg.Provider.Gateways = gateways
	}
	return NewClient(cfg)
}

func TestMockUploadShape(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", "", "https://w3s.link/ipfs/")

	result := client.Upload(context.Background(), []byte("<html></html>"), "index.html")
	require.NotNil(t, result)
	assert.True(t, result.Mock)
	assert.True(t, strings.HasPrefix(result.CID, "bafybeig"))
	assert.Len(t, result.CID, 59)
	assert.True(t, IsMockCID(result.CID))
	assert.True(t, strings.HasPrefix(result.DealID, "dev-"))
	assert.Equal(t, "https://w3s.link/ipfs/"+result.CID, result.FilCDNUrl)
}

func TestMockUploadSameNameDoesNotCollide(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", "")

	first := client.Upload(context.Background(), []byte("a"), "index.html")
	second := client.Upload(context.Background(), []byte("a"), "index.html")
	assert.NotEqual(t, first.CID, second.CID)
	assert.NotEqual(t, first.DealID, second.DealID)
}

func TestAPIUploadSuccess(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "site.html", header.Filename)
		w.Write([]byte(`{"cid":"bafyrealcid123"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "secret-token", "https://w3s.link/ipfs/")
	result := client.Upload(context.Background(), []byte("<html></html>"), "site.html")

	assert.False(t, result.Mock)
	assert.Equal(t, "bafyrealcid123", result.CID)
	assert.Equal(t, "w3s-bafyreal", result.DealID)
	assert.Equal(t, "https://w3s.link/ipfs/bafyrealcid123", result.FilCDNUrl)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestUploadFallsBackToMockOnAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "secret-token")
	result := client.Upload(context.Background(), []byte("data"), "site.html")

	require.NotNil(t, result)
	assert.True(t, result.Mock)
	assert.True(t, IsMockCID(result.CID))
}

func TestUploadFallsBackToMockOnEmptyCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "secret-token")
	result := client.Upload(context.Background(), []byte("data"), "site.html")
	assert.True(t, result.Mock)
}

func TestUploadSkipsAPIWithoutToken(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, "")
	result := client.Upload(context.Background(), []byte("data"), "site.html")

	assert.True(t, result.Mock)
	assert.Zero(t, calls)
}

func TestValidateUpload(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0", "")
	maxSize := client.MaxFileSize()

	tests := []struct {
		name     string
		filename string
		mimeType string
		size     int64
		wantErr  error
	}{
		{"html ok", "index.html", "text/html", 1024, nil},
		{"png ok", "photo.png", "image/png", 1024, nil},
		{"glb by extension", "model.glb", "application/octet-stream", 1024, nil},
		{"exactly max size", "big.json", "application/json", maxSize, nil},
		{"over max size", "big.json", "application/json", maxSize + 1, ErrFileTooLarge},
		{"empty file", "index.html", "text/html", 0, ErrEmptyFile},
		{"executable rejected", "tool.exe", "application/x-executable", 1024, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.ValidateUpload(tt.filename, tt.mimeType, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
