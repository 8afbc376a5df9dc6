package use_cases

import (
	"context"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const defaultOpenAPIContentType = "application/yaml"

type getOpenAPISpecUseCase struct {
	readModel portsout.OpenAPISpecReadModel
}

func NewGetOpenAPISpecUseCase(readModel portsout.OpenAPISpecReadModel) portsin.GetOpenAPISpecUseCase {
	return &getOpenAPISpecUseCase{readModel: readModel}
}

func (u *getOpenAPISpecUseCase) Execute(ctx context.Context, _ dto.GetOpenAPISpecQuery) (dto.OpenAPISpecOutput, *apperrors.AppError) {
	if u.readModel == nil {
		return dto.OpenAPISpecOutput{}, apperrors.NewInternal(
			"openapi_read_model_missing",
			"openapi read model is required",
			nil,
		)
	}

	content, contentType, appErr := u.readModel.Read(ctx)
	switch {
	case appErr != nil:
		return dto.OpenAPISpecOutput{}, appErr
	case len(content) == 0:
		return dto.OpenAPISpecOutput{}, apperrors.NewNotFound("openapi_spec_empty", "openapi document is empty", nil)
	case contentType == "":
		contentType = defaultOpenAPIContentType
	}

	return dto.OpenAPISpecOutput{Content: content, ContentType: contentType}, nil
}
