package handler

import (
	"github.com/deppfellow/itemsvc/internal/server"
	"github.com/deppfellow/itemsvc/internal/service"
)

// Handlers groups all HTTP handlers so router setup receives one value.
type Handlers struct {
	Health  *HealthHandler
	Items   *ItemHandler
	OpenAPI *OpenAPIHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		Items:   NewItemHandler(s, services.Items),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
