package provider

import (
	"net/http"
	"strings"
)

// allowedMimeTypes is the upload allow-list: small web assets only.
var allowedMimeTypes = map[string]bool{
	"text/html":              true,
	"text/css":               true,
	"text/plain":             true,
	"application/javascript": true,
	"application/json":       true,
	"image/jpeg":             true,
	"image/png":              true,
	"image/svg+xml":          true,
	"model/gltf-binary":      true,
	"model/gltf+json":        true,
}

var extMimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".txt":  "text/plain",
	".js":   "application/javascript",
	".json": "application/json",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".glb":  "model/gltf-binary",
	".gltf": "model/gltf+json",
}

// AllowedType reports whether an upload is acceptable. Binary glTF uploads
// often arrive as application/octet-stream, so a .glb filename passes
// regardless of the declared type.
func AllowedType(mimeType, filename string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".glb") {
		return true
	}
	// Strip parameters like "; charset=utf-8" before matching.
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return allowedMimeTypes[strings.TrimSpace(strings.ToLower(mimeType))]
}

// DetectMimeType resolves a MIME type from the filename extension, falling
// back to content sniffing.
func DetectMimeType(filename string, data []byte) string {
	ext := ""
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			ext = strings.ToLower(filename[i:])
			break
		}
	}

	if mime, ok := extMimeTypes[ext]; ok {
		return mime
	}

	detected := http.DetectContentType(data)
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = detected[:i]
	}
	return detected
}
