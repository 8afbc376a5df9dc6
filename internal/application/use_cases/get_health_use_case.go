package use_cases

import (
	"context"
	"time"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	"hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const healthCheckTimeout = 2 * time.Second

type getHealthUseCase struct {
	database portsout.ReadinessChecker
}

// NewGetHealthUseCase reports liveness. With a database checker it also pings
// the ledger and reports degraded when the ping fails.
func NewGetHealthUseCase(database portsout.ReadinessChecker) portsin.GetHealthUseCase {
	return &getHealthUseCase{database: database}
}

func (u *getHealthUseCase) Execute(ctx context.Context, _ dto.GetHealthCommand) (dto.HealthOutput, *apperrors.AppError) {
	if u.database == nil {
		return dto.HealthOutput{Status: valueobjects.NewHealthyStatus().String()}, nil
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	output := dto.HealthOutput{Checks: map[string]string{"database": "ok"}}
	passed := map[string]bool{"database": true}
	if appErr := u.database.CheckReadiness(checkCtx); appErr != nil {
		output.Checks["database"] = appErr.Code
		passed["database"] = false
	}
	output.Status = valueobjects.HealthFromChecks(passed).String()

	return output, nil
}
