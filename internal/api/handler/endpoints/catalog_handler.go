package endpoints

import (
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/handler/middleware"
	"mlstudio/internal/api/handler/response"
	"mlstudio/internal/compile"
)

type catalogHandler struct {
	registry *compile.Registry
	config   mlstudio.AppConfig
	logger   zerolog.Logger
}

func newCatalogHandler() *catalogHandler {
	return &catalogHandler{
		registry: compile.DefaultRegistry,
		config:   mlstudio.GetConfig(),
		logger:   mlstudio.Logger,
	}
}

// CatalogHandler exposes the node catalog the editor builds its palette from.
func CatalogHandler(router *graceful.Graceful) {
	h := newCatalogHandler()

	routes := router.Group("/api/v1/catalog")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.GET("", h.getAll)
		routes.GET("/:type", h.getByType)
	}
}

// getAll returns every registered node definition, in registration order
func (slf *catalogHandler) getAll(c *gin.Context) {
	c.JSON(http.StatusOK, slf.registry.Definitions())
}

// getByType returns one node definition
func (slf *catalogHandler) getByType(c *gin.Context) {
	def, err := slf.registry.Resolve(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, def)
}
