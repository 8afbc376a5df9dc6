package router

import (
	"log"
	"net/http"
	"time"

	"hdpay/internal/adapters/inbound/http/controllers"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type Dependencies struct {
	HealthController   *controllers.HealthController
	SwaggerController  *controllers.SwaggerController
	InvoicesController *controllers.InvoicesController
	Logger             *log.Logger
}

func New(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", deps.HealthController.GetHealth)
	mux.HandleFunc("GET /swagger", deps.SwaggerController.RedirectToIndex)
	mux.HandleFunc("GET /swagger/openapi.yaml", deps.SwaggerController.GetOpenAPISpec)
	mux.HandleFunc("GET /swagger/", deps.SwaggerController.ServeUI)

	mux.HandleFunc("POST /v1/invoices", deps.InvoicesController.CreateInvoice)
	mux.HandleFunc("GET /v1/invoices/{transaction_id}", deps.InvoicesController.GetInvoice)
	mux.HandleFunc("GET /v1/invoices/{transaction_id}/qr.png", deps.InvoicesController.GetInvoiceQRCode)
	mux.HandleFunc("POST /v1/invoices/{transaction_id}/check", deps.InvoicesController.CheckInvoice)
	mux.HandleFunc("POST /v1/invoices/{transaction_id}/cancel", deps.InvoicesController.CancelInvoice)

	return withAccessLog(mux, deps.Logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withAccessLog echoes or assigns X-Request-ID and logs one line per request.
func withAccessLog(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		startedAt := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if logger != nil {
			logger.Printf(
				"http request request_id=%s method=%s path=%s status=%d latency_ms=%d",
				requestID,
				r.Method,
				r.URL.Path,
				recorder.status,
				time.Since(startedAt).Milliseconds(),
			)
		}
	})
}
