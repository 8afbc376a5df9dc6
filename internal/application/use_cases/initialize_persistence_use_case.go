package use_cases

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	portsout "hdpay/internal/application/ports/out"
	valueobjects "hdpay/internal/domain/value_objects"
	apperrors "hdpay/internal/shared_kernel/errors"
)

type initializePersistenceUseCase struct {
	gateway portsout.PersistenceBootstrapGateway
	logger  *log.Logger
}

func NewInitializePersistenceUseCase(
	gateway portsout.PersistenceBootstrapGateway,
	logger *log.Logger,
) portsin.InitializePersistenceUseCase {
	return &initializePersistenceUseCase{
		gateway: gateway,
		logger:  logger,
	}
}

// Execute waits for the database, applies migrations and seeds one address
// counter per HD coin. Seeding never resets an existing counter.
func (u *initializePersistenceUseCase) Execute(
	ctx context.Context,
	command dto.InitializePersistenceCommand,
) (dto.InitializePersistenceOutput, *apperrors.AppError) {
	if u.gateway == nil {
		return dto.InitializePersistenceOutput{}, apperrors.NewInternal(
			"persistence_gateway_missing",
			"persistence gateway is required",
			nil,
		)
	}

	if command.ReadinessTimeout <= 0 {
		return dto.InitializePersistenceOutput{}, apperrors.NewValidation(
			"readiness_timeout_invalid",
			"readiness timeout must be greater than zero",
			nil,
		)
	}

	if command.ReadinessRetryInterval <= 0 {
		return dto.InitializePersistenceOutput{}, apperrors.NewValidation(
			"readiness_retry_interval_invalid",
			"readiness retry interval must be greater than zero",
			nil,
		)
	}

	attempts, appErr := u.waitForReadiness(ctx, command)
	if appErr != nil {
		return dto.InitializePersistenceOutput{}, appErr
	}

	if migrationErr := u.gateway.RunMigrations(ctx); migrationErr != nil {
		return dto.InitializePersistenceOutput{}, migrationErr
	}

	hdCoins := valueobjects.SupportedHDCoins()
	if seedErr := u.gateway.SeedAddressIndexCounters(ctx, hdCoins); seedErr != nil {
		return dto.InitializePersistenceOutput{}, seedErr
	}

	seeded := make([]string, 0, len(hdCoins))
	for _, hdCoin := range hdCoins {
		seeded = append(seeded, hdCoin.String())
	}

	if u.logger != nil {
		u.logger.Printf(
			"persistence initialized readiness_attempts=%d hd_counters=%s",
			attempts,
			strings.Join(seeded, ","),
		)
	}
	return dto.InitializePersistenceOutput{
		ReadinessAttempts: attempts,
		SeededCoins:       seeded,
	}, nil
}

func (u *initializePersistenceUseCase) waitForReadiness(
	ctx context.Context,
	command dto.InitializePersistenceCommand,
) (int, *apperrors.AppError) {
	readinessCtx, cancel := context.WithTimeout(ctx, command.ReadinessTimeout)
	defer cancel()

	attempts := 0
	for {
		attempts++
		appErr := u.gateway.CheckReadiness(readinessCtx)
		if appErr == nil {
			return attempts, nil
		}

		if readinessCtx.Err() != nil {
			return attempts, apperrors.NewInternal(
				"db_readiness_timeout",
				"database readiness check timed out",
				map[string]any{
					"attempts":  strconv.Itoa(attempts),
					"timeout":   command.ReadinessTimeout.String(),
					"last_code": appErr.Code,
				},
			)
		}

		timer := time.NewTimer(command.ReadinessRetryInterval)
		select {
		case <-readinessCtx.Done():
			timer.Stop()
			return attempts, apperrors.NewInternal(
				"db_readiness_timeout",
				"database readiness check timed out",
				map[string]any{
					"attempts": strconv.Itoa(attempts),
					"timeout":  command.ReadinessTimeout.String(),
				},
			)
		case <-timer.C:
		}
	}
}
