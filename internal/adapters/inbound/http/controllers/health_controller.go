package controllers

import (
	"log"
	"net/http"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	valueobjects "hdpay/internal/domain/value_objects"
)

type HealthController struct {
	useCase portsin.GetHealthUseCase
	logger  *log.Logger
}

func NewHealthController(useCase portsin.GetHealthUseCase, logger *log.Logger) *HealthController {
	return &HealthController{
		useCase: useCase,
		logger:  logger,
	}
}

// GetHealth answers 200 while the ledger is reachable and 503 with the
// failing check codes otherwise, so load balancers drain a degraded node.
func (c *HealthController) GetHealth(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCase.Execute(r.Context(), dto.GetHealthCommand{})
	if appErr != nil {
		logRequestError(c.logger, r, "/healthz", appErr)
		writeAppError(w, appErr)
		return
	}

	if output.Status == valueobjects.HealthStatusOK.String() {
		writeJSON(w, http.StatusOK, output)
		return
	}

	if c.logger != nil {
		c.logger.Printf("health degraded checks=%v", output.Checks)
	}
	writeJSON(w, http.StatusServiceUnavailable, output)
}
