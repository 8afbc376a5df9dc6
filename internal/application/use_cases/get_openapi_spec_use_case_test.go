//go:build !integration

package use_cases

import (
	"context"
	"testing"

	"hdpay/internal/application/dto"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type fakeOpenAPIReadModel struct {
	content     []byte
	contentType string
	err         *apperrors.AppError
}

func (f fakeOpenAPIReadModel) Read(context.Context) ([]byte, string, *apperrors.AppError) {
	return f.content, f.contentType, f.err
}

func TestGetOpenAPISpecUseCase(t *testing.T) {
	cases := []struct {
		name            string
		readModel       fakeOpenAPIReadModel
		wantCode        string
		wantContentType string
	}{
		{name: "document", readModel: fakeOpenAPIReadModel{content: []byte("openapi: 3.0.3"), contentType: "text/yaml"}, wantContentType: "text/yaml"},
		{name: "missing content type", readModel: fakeOpenAPIReadModel{content: []byte("openapi: 3.0.3")}, wantContentType: "application/yaml"},
		{name: "empty document", readModel: fakeOpenAPIReadModel{contentType: "text/yaml"}, wantCode: "openapi_spec_empty"},
		{name: "read failure", readModel: fakeOpenAPIReadModel{err: apperrors.NewInternal("openapi_file_read_failed", "failed", nil)}, wantCode: "openapi_file_read_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			output, appErr := NewGetOpenAPISpecUseCase(tc.readModel).Execute(context.Background(), dto.GetOpenAPISpecQuery{})
			if tc.wantCode != "" {
				if appErr == nil || appErr.Code != tc.wantCode {
					t.Fatalf("expected %s, got %v", tc.wantCode, appErr)
				}
				return
			}
			if appErr != nil {
				t.Fatalf("expected no error, got %v", appErr)
			}
			if output.ContentType != tc.wantContentType {
				t.Fatalf("expected content type %s, got %s", tc.wantContentType, output.ContentType)
			}
		})
	}
}

func TestGetOpenAPISpecUseCaseRequiresReadModel(t *testing.T) {
	_, appErr := NewGetOpenAPISpecUseCase(nil).Execute(context.Background(), dto.GetOpenAPISpecQuery{})
	if appErr == nil || appErr.Code != "openapi_read_model_missing" {
		t.Fatalf("expected openapi_read_model_missing, got %v", appErr)
	}
}
