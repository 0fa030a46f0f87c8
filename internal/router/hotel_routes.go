package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/talbothotels/backoffice/internal/config"
	"github.com/talbothotels/backoffice/internal/handler"
	"github.com/talbothotels/backoffice/internal/middleware"
	"github.com/talbothotels/backoffice/internal/model"
)

// RegisterHotels registers the hotel fleet endpoints under /v1/hotels.
// Reads are open to any authenticated staff member and served through the
// Redis response cache; writes and the stats report require the
// ADMINISTRADOR role.
func RegisterHotels(e *echo.Echo, h *handler.HotelHandler, jwtSecret string, users middleware.UserLoader, cacheCfg config.CacheConfig, rdb *redis.Client) {
	read := e.Group(
		"/v1/hotels",
		middleware.JWTAuth(jwtSecret, users),
		middleware.ResponseCache(cacheCfg, rdb),
	)
	read.GET("", h.List)
	read.GET("/search", h.Search)
	// Static segments must be registered alongside /:id; Echo resolves the
	// literal routes first.
	read.GET("/status/:status", h.ListByStatus)
	read.GET("/:id", h.Get)

	admin := e.Group(
		"/v1/hotels",
		middleware.JWTAuth(jwtSecret, users),
		middleware.RequireRole(model.RoleAdministrador),
	)
	admin.GET("/stats", h.Stats)
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)
}
