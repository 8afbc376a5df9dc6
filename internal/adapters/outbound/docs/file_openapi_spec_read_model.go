package docs

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"strings"

	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const yamlContentType = "application/yaml; charset=utf-8"

// FileOpenAPISpecReadModel serves the OpenAPI document from disk and falls
// back to the copy compiled into the binary when the file is absent.
type FileOpenAPISpecReadModel struct {
	path     string
	embedded []byte
}

var _ portsout.OpenAPISpecReadModel = (*FileOpenAPISpecReadModel)(nil)

func NewFileOpenAPISpecReadModel(path string, embedded []byte) *FileOpenAPISpecReadModel {
	return &FileOpenAPISpecReadModel{
		path:     strings.TrimSpace(path),
		embedded: embedded,
	}
}

func (r *FileOpenAPISpecReadModel) Read(_ context.Context) ([]byte, string, *apperrors.AppError) {
	if r.path != "" {
		content, err := os.ReadFile(r.path)
		if err == nil {
			return content, yamlContentType, nil
		}
		if !stderrors.Is(err, fs.ErrNotExist) || len(r.embedded) == 0 {
			return nil, "", apperrors.NewInternal(
				"openapi_file_read_failed",
				"failed to read OpenAPI spec file",
				map[string]any{"path": r.path},
			)
		}
	}

	if len(r.embedded) == 0 {
		return nil, "", apperrors.NewNotFound(
			"openapi_spec_not_found",
			"openapi document is not available",
			nil,
		)
	}
	return r.embedded, yamlContentType, nil
}
