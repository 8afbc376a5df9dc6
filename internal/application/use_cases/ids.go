package use_cases

import (
	"strings"

	apperrors "hdpay/internal/shared_kernel/errors"

	"github.com/google/uuid"
)

func generateID(prefix string) (string, *apperrors.AppError) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", apperrors.NewInternal(
			"id_generation_failed",
			"failed to generate random identifier",
			map[string]any{"error": err.Error()},
		)
	}

	return prefix + strings.ReplaceAll(id.String(), "-", ""), nil
}
