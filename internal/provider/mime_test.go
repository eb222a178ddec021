package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedType(t *testing.T) {
	tests := []struct {
		mimeType string
		filename string
		want     bool
	}{
		{"text/html", "index.html", true},
		{"text/css", "style.css", true},
		{"text/plain", "notes.txt", true},
		{"application/javascript", "app.js", true},
		{"application/json", "data.json", true},
		{"image/jpeg", "photo.jpg", true},
		{"image/png", "photo.png", true},
		{"image/svg+xml", "icon.svg", true},
		{"model/gltf-binary", "scene.glb", true},
		{"model/gltf+json", "scene.gltf", true},
		{"text/html; charset=utf-8", "index.html", true},
		{"application/octet-stream", "model.glb", true},
		{"application/octet-stream", "MODEL.GLB", true},
		{"application/octet-stream", "binary.bin", false},
		{"application/x-executable", "tool", false},
		{"video/mp4", "movie.mp4", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedType(tt.mimeType, tt.filename),
			"AllowedType(%q, %q)", tt.mimeType, tt.filename)
	}
}

func TestDetectMimeType(t *testing.T) {
	tests := []struct {
		filename string
		data     []byte
		want     string
	}{
		{"index.html", nil, "text/html"},
		{"style.css", nil, "text/css"},
		{"app.js", nil, "application/javascript"},
		{"data.json", nil, "application/json"},
		{"photo.JPG", nil, "image/jpeg"},
		{"scene.glb", nil, "model/gltf-binary"},
		{"mystery", []byte("<html><body>hi</body></html>"), "text/html"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectMimeType(tt.filename, tt.data),
			"DetectMimeType(%q)", tt.filename)
	}
}
