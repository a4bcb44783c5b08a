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

type dbHandler struct {
	config mlstudio.AppConfig
	logger zerolog.Logger
}

func newDbHandler() *dbHandler {
	return &dbHandler{
		config: mlstudio.GetConfig(),
		logger: mlstudio.Logger,
	}
}

// DbHandler sets up database introspection routes used by the load_sql node
// editor to browse a source database.
func DbHandler(router *graceful.Graceful) {
	h := newDbHandler()

	routes := router.Group("/api/v1/db")
	routes.Use(middleware.AuthMiddleware(h.config))
	{
		routes.POST("/test-connection", h.testConnection)
		routes.POST("/tables", h.tables)
		routes.POST("/columns", h.columns)
	}
}

// testConnection verifies the connection details entered in the editor
func (slf *dbHandler) testConnection(c *gin.Context) {
	var req request.TestConnectionRequest
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse test connection request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	result := service.TestDatabaseConnection(req.Connection)
	c.JSON(http.StatusOK, result)
}

// tables lists the tables of the target database
func (slf *dbHandler) tables(c *gin.Context) {
	var req request.IntrospectTablesRequest
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse introspect tables request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	tables, err := service.IntrospectTables(req.Connection)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to introspect tables")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, tables)
}

// columns lists the columns of one table
func (slf *dbHandler) columns(c *gin.Context) {
	var req request.IntrospectColumnsRequest
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		slf.logger.Error().Err(err).Msg("Failed to parse introspect columns request")
		c.JSON(http.StatusBadRequest, response.APIError{Message: err.Error()})
		return
	}

	columns, err := service.IntrospectColumns(req.Connection, req.TableName)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to introspect columns")
		c.JSON(http.StatusInternalServerError, response.APIError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, columns)
}
