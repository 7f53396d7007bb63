package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/v1/search":                 "/api/v1/search",
		"/api/v1/documents":              "/api/v1/documents",
		"/api/v1/documents/bulk":         "/api/v1/documents/bulk",
		"/api/v1/documents/load-sample":  "/api/v1/documents/load-sample",
		"/api/v1/documents/abc-123-uuid": "/api/v1/documents/{id}",
		"/health/ready":                  "/health/ready",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), "path %s", in)
	}
}
