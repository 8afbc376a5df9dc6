package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"
	apperrors "hdpay/internal/shared_kernel/errors"
)

const (
	maxCreateBodyBytes = 64 << 10
	qrCodeSizePixels   = 256
)

type InvoicesController struct {
	createUseCase portsin.CreateInvoiceUseCase
	getUseCase    portsin.GetInvoiceUseCase
	checkUseCase  portsin.CheckInvoiceUseCase
	cancelUseCase portsin.CancelInvoiceUseCase
	logger        *log.Logger
}

type createInvoicePayload struct {
	OwnerID            string         `json:"owner_id"`
	Kind               string         `json:"kind"`
	Coin               string         `json:"coin"`
	FiatAmount         amountField    `json:"fiat_amount"`
	PrepaidFromBalance amountField    `json:"prepaid_from_balance"`
	Item               map[string]any `json:"item,omitempty"`
}

// amountField accepts a euro amount as either a JSON string or number.
type amountField string

func (a *amountField) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*a = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		*a = amountField(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err != nil {
		return err
	}
	*a = amountField(number.String())
	return nil
}

func NewInvoicesController(
	createUseCase portsin.CreateInvoiceUseCase,
	getUseCase portsin.GetInvoiceUseCase,
	checkUseCase portsin.CheckInvoiceUseCase,
	cancelUseCase portsin.CancelInvoiceUseCase,
	logger *log.Logger,
) *InvoicesController {
	return &InvoicesController{
		createUseCase: createUseCase,
		getUseCase:    getUseCase,
		checkUseCase:  checkUseCase,
		cancelUseCase: cancelUseCase,
		logger:        logger,
	}
}

func (c *InvoicesController) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	payload, appErr := parseCreateInvoicePayload(http.MaxBytesReader(w, r.Body, maxCreateBodyBytes))
	if appErr != nil {
		writeAppError(w, appErr)
		return
	}

	output, appErr := c.createUseCase.Execute(r.Context(), dto.CreateInvoiceCommand{
		OwnerID:            payload.OwnerID,
		Kind:               payload.Kind,
		Coin:               payload.Coin,
		FiatAmount:         string(payload.FiatAmount),
		PrepaidFromBalance: string(payload.PrepaidFromBalance),
		Item:               payload.Item,
	})
	if appErr != nil {
		logRequestError(c.logger, r, "/v1/invoices", appErr)
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Location", "/v1/invoices/"+output.TransactionID)
	writeJSON(w, http.StatusCreated, output)
}

func (c *InvoicesController) GetInvoice(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.getUseCase.Execute(r.Context(), dto.GetInvoiceQuery{TransactionID: r.PathValue("transaction_id")})
	if appErr != nil {
		logRequestError(c.logger, r, "/v1/invoices/{transaction_id}", appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

// GetInvoiceQRCode renders the invoice payment URI as a PNG QR code.
func (c *InvoicesController) GetInvoiceQRCode(w http.ResponseWriter, r *http.Request) {
	const path = "/v1/invoices/{transaction_id}/qr.png"

	output, appErr := c.getUseCase.Execute(r.Context(), dto.GetInvoiceQuery{TransactionID: r.PathValue("transaction_id")})
	if appErr != nil {
		logRequestError(c.logger, r, path, appErr)
		writeAppError(w, appErr)
		return
	}
	if output.PaymentURI == "" {
		appErr = apperrors.NewConflict(
			"invoice_payment_uri_missing",
			"invoice has no payment uri to encode",
			map[string]any{"transaction_id": output.TransactionID, "status": output.Status},
		)
		logRequestError(c.logger, r, path, appErr)
		writeAppError(w, appErr)
		return
	}

	png, err := qrcode.Encode(output.PaymentURI, qrcode.Medium, qrCodeSizePixels)
	if err != nil {
		appErr = apperrors.NewInternal("qr_code_render_failed", "failed to render qr code", nil)
		if c.logger != nil {
			c.logger.Printf("qr code render failed transaction_id=%s error=%v", output.TransactionID, err)
		}
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (c *InvoicesController) CheckInvoice(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.checkUseCase.Execute(r.Context(), dto.CheckInvoiceCommand{TransactionID: r.PathValue("transaction_id")})
	if appErr != nil {
		logRequestError(c.logger, r, "/v1/invoices/{transaction_id}/check", appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func (c *InvoicesController) CancelInvoice(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.cancelUseCase.Execute(r.Context(), dto.CancelInvoiceCommand{TransactionID: r.PathValue("transaction_id")})
	if appErr != nil {
		logRequestError(c.logger, r, "/v1/invoices/{transaction_id}/cancel", appErr)
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, output)
}

func parseCreateInvoicePayload(body io.Reader) (createInvoicePayload, *apperrors.AppError) {
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	payload := createInvoicePayload{}
	if err := decoder.Decode(&payload); err != nil {
		return createInvoicePayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must be valid JSON",
			map[string]any{"error": err.Error()},
		)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return createInvoicePayload{}, apperrors.NewValidation(
			"invalid_request",
			"request body must contain a single JSON object",
			nil,
		)
	}

	payload.OwnerID = strings.TrimSpace(payload.OwnerID)
	if payload.OwnerID == "" {
		return createInvoicePayload{}, apperrors.NewValidation(
			"invalid_request",
			"owner_id is required",
			map[string]any{"field": "owner_id"},
		)
	}
	if payload.Item == nil {
		payload.Item = map[string]any{}
	}

	return payload, nil
}
