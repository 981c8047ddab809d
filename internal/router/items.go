package router

import (
	"net/http"

	"github.com/deppfellow/itemsvc/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerItemRoutes mounts the items resource and liveness under /api.
func registerItemRoutes(api *echo.Group, h *handler.Handlers) {
	api.GET("/health", handler.Handle(h.Health.Handler, h.Health.Health, http.StatusOK, handler.NewRequest[handler.EmptyRequest]))

	items := api.Group("/items")
	items.GET("", handler.Handle(h.Items.Handler, h.Items.ListItems, http.StatusOK, handler.NewRequest[handler.EmptyRequest]))
	items.POST("", handler.Handle(h.Items.Handler, h.Items.CreateItem, http.StatusCreated, handler.NewRequest[handler.CreateItemRequest]))
	items.PUT("/:id", handler.Handle(h.Items.Handler, h.Items.UpdateItem, http.StatusOK, handler.NewRequest[handler.UpdateItemRequest]))
	items.DELETE("/:id", handler.Handle(h.Items.Handler, h.Items.DeleteItem, http.StatusOK, handler.NewRequest[handler.DeleteItemRequest]))
}
