//go:build !integration

package docs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestReadPrefersFileOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte("openapi: 3.0.3\n"), 0o600); err != nil {
		t.Fatalf("failed to write spec: %v", err)
	}

	content, contentType, appErr := NewFileOpenAPISpecReadModel(path, []byte("embedded")).Read(context.Background())
	if appErr != nil {
		t.Fatalf("expected no error, got %+v", appErr)
	}
	if string(content) != "openapi: 3.0.3\n" || contentType != yamlContentType {
		t.Fatalf("unexpected content %q/%s", content, contentType)
	}
}

func TestReadFallsBackToEmbeddedCopy(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	content, _, appErr := NewFileOpenAPISpecReadModel(missing, []byte("embedded")).Read(context.Background())
	if appErr != nil || string(content) != "embedded" {
		t.Fatalf("expected embedded fallback, got %q err=%+v", content, appErr)
	}

	_, _, appErr = NewFileOpenAPISpecReadModel(missing, nil).Read(context.Background())
	if appErr == nil || appErr.Code != "openapi_file_read_failed" {
		t.Fatalf("expected openapi_file_read_failed, got %+v", appErr)
	}

	_, _, appErr = NewFileOpenAPISpecReadModel("", nil).Read(context.Background())
	if appErr == nil || appErr.Code != "openapi_spec_not_found" {
		t.Fatalf("expected openapi_spec_not_found, got %+v", appErr)
	}
}
