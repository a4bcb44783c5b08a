package endpoints

import (
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/handler/middleware"
	"mlstudio/internal/api/handler/request"
	"mlstudio/internal/api/handler/response"
	"mlstudio/internal/api/service"
	"mlstudio/pkg"
)

type sqlHandler struct {
	sqlService *service.SqlService
	config     mlstudio.AppConfig
	logger     zerolog.Logger
}

func newSqlHandler() *sqlHandler {
	return &sqlHandler{
		sqlService: service.NewSqlService(),
		config:     mlstudio.GetConfig(),
		logger:     mlstudio.Logger,
	}
}

// SqlHandler sets up SQL helper routes used by the SQL source node editor
func SqlHandler(router *graceful.Graceful) {
	h := newSqlHandler()

	routes := router.Group("/api/v1/sql")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/validate", h.validateQuery)
		routes.POST("/schema", h.fetchSchema)
	}
}

// validateQuery checks a query before it is stored in a load_sql node
func (slf *sqlHandler) validateQuery(c *gin.Context) {
	var req request.ValidateQueryRequest
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse validate query request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	valid, message := slf.sqlService.ValidateQuery(req.Query)
	c.JSON(http.StatusOK, response.ValidateQueryResponse{
		Valid:   valid,
		Message: message,
	})
}

// fetchSchema returns the enriched schema of the target database
func (slf *sqlHandler) fetchSchema(c *gin.Context) {
	var req request.FetchSchemaRequest
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse fetch schema request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	columns, err := slf.sqlService.FetchSchema(req.Connection)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to fetch schema")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.SchemaResponse{Columns: columns})
}
