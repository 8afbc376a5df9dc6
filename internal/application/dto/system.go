package dto

type GetHealthCommand struct{}

type HealthOutput struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type GetOpenAPISpecQuery struct{}

type OpenAPISpecOutput struct {
	Content     []byte
	ContentType string
}
