package router

import (
	"net/http"
	"strings"

	"github.com/deppfellow/itemsvc/internal/handler"
	"github.com/deppfellow/itemsvc/internal/server"
	"github.com/deppfellow/itemsvc/internal/web"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// registerSystemRoutes registers endpoints that are not part of the items
// API: readiness, the docs UI and its assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", web.Static())

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}

// systemPrefixes are never answered by the front end fallback.
var systemPrefixes = []string{"/api", "/static", "/docs", "/status"}

// registerFrontend serves the single-page front end to GET and HEAD:
// existing files as-is, any other path with index.html. server.static_dir
// replaces the embedded build when set.
func registerFrontend(r *echo.Echo, s *server.Server) {
	cfg := echomw.StaticConfig{
		Index: "index.html",
		HTML5: true,
		Skipper: func(c echo.Context) bool {
			if m := c.Request().Method; m != http.MethodGet && m != http.MethodHead {
				return true
			}
			path := c.Request().URL.Path
			for _, prefix := range systemPrefixes {
				if path == prefix || strings.HasPrefix(path, prefix+"/") {
					return true
				}
			}
			return false
		},
	}

	if dir := s.Config.Server.StaticDir; dir != "" {
		cfg.Root = dir
	} else {
		cfg.Filesystem = http.FS(web.Public())
	}

	r.Use(echomw.StaticWithConfig(cfg))
}
