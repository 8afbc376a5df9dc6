package controllers

import (
	"log"
	"net/http"

	"hdpay/internal/application/dto"
	portsin "hdpay/internal/application/ports/in"

	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	swaggerIndexPath   = "/swagger/index.html"
	openAPIDocumentURL = "/swagger/openapi.yaml"
)

type SwaggerController struct {
	useCase   portsin.GetOpenAPISpecUseCase
	logger    *log.Logger
	uiHandler http.Handler
}

// NewSwaggerController serves Swagger UI pointed at the invoice API contract.
func NewSwaggerController(useCase portsin.GetOpenAPISpecUseCase, logger *log.Logger) *SwaggerController {
	return &SwaggerController{
		useCase: useCase,
		logger:  logger,
		uiHandler: httpSwagger.Handler(
			httpSwagger.URL(openAPIDocumentURL),
			httpSwagger.DocExpansion("list"),
			httpSwagger.DeepLinking(true),
		),
	}
}

func (c *SwaggerController) RedirectToIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, swaggerIndexPath, http.StatusTemporaryRedirect)
}

func (c *SwaggerController) ServeUI(w http.ResponseWriter, r *http.Request) {
	c.uiHandler.ServeHTTP(w, r)
}

func (c *SwaggerController) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	output, appErr := c.useCase.Execute(r.Context(), dto.GetOpenAPISpecQuery{})
	if appErr != nil {
		logRequestError(c.logger, r, openAPIDocumentURL, appErr)
		writeAppError(w, appErr)
		return
	}

	w.Header().Set("Content-Type", output.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(output.Content); err != nil && c.logger != nil {
		c.logger.Printf("response write error path=%s method=%s error=%v", openAPIDocumentURL, r.Method, err)
	}
}
