package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mlstudio"
	"mlstudio/internal/api/handler/middleware"
	"mlstudio/internal/api/handler/response"
	websocket2 "mlstudio/internal/api/websocket"
	"mlstudio/internal/api/service"
	"mlstudio/pkg"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, you should validate the origin
		return true
	},
}

type websocketHandler struct {
	hub             *websocket2.Hub
	processor       *websocket2.MessageProcessor
	workflowService *service.WorkflowService
	logger          zerolog.Logger
	config          mlstudio.AppConfig
}

func newWebSocketHandler(hub *websocket2.Hub, processor *websocket2.MessageProcessor) *websocketHandler {
	return &websocketHandler{
		hub:             hub,
		processor:       processor,
		workflowService: service.NewWorkflowService(),
		logger:          mlstudio.Logger,
		config:          mlstudio.GetConfig(),
	}
}

// WebSocketHandler sets up WebSocket routes
func WebSocketHandler(router *graceful.Graceful, hub *websocket2.Hub, processor *websocket2.MessageProcessor) {
	h := newWebSocketHandler(hub, processor)

	// WebSocket endpoint - requires authentication
	wsRoutes := router.Group("/api/v1/ws")
	wsRoutes.Use(middleware.AuthMiddleware(h.config))
	{
		wsRoutes.GET("/workflows/:workflowId", h.handleWebSocket)
		wsRoutes.GET("/workflows/:workflowId/users", h.getActiveUsers)
		wsRoutes.GET("/stats", h.getRoomStats)
	}
}

// handleWebSocket handles WebSocket connections for a specific workflow
func (slf *websocketHandler) handleWebSocket(c *gin.Context) {
	workflowID, err := strconv.ParseUint(c.Param("workflowId"), 10, 32)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid workflow ID")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid workflow ID"})
		return
	}

	userID, ok := pkg.GetUserID(c)
	if !ok {
		return
	}

	canAccess, _, err := slf.workflowService.CanUserAccess(uint(workflowID), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: err.Error()})
		return
	}
	if !canAccess {
		c.JSON(http.StatusForbidden, response.APIError{Message: "You do not have access to this workflow"})
		return
	}

	username := fmt.Sprintf("User%d", userID)
	if email, exists := c.Get("userEmail"); exists {
		username = email.(string)
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	// Create unique client ID
	clientID := uuid.New().String()

	// Create new client with processor
	client := websocket2.NewClient(
		clientID,
		userID,
		username,
		uint(workflowID),
		slf.hub,
		conn,
		slf.processor,
		slf.logger,
	)

	// Register client
	slf.hub.Register <- client

	slf.logger.Info().
		Str("clientId", clientID).
		Uint("userId", userID).
		Uint("workflowId", uint(workflowID)).
		Msg("WebSocket connection established")

	// Start client goroutines
	go client.WritePump()
	go client.ReadPump()
}

// getActiveUsers returns the list of active users in a room
func (slf *websocketHandler) getActiveUsers(c *gin.Context) {
	workflowID, err := strconv.ParseUint(c.Param("workflowId"), 10, 32)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Invalid workflow ID")
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid workflow ID"})
		return
	}

	users := slf.hub.GetActiveUsersInRoom(uint(workflowID))
	c.JSON(http.StatusOK, gin.H{
		"workflowId": workflowID,
		"users":      users,
	})
}

// getRoomStats returns statistics about all active rooms
func (slf *websocketHandler) getRoomStats(c *gin.Context) {
	stats := slf.hub.GetRoomStats()
	c.JSON(http.StatusOK, gin.H{
		"rooms": stats,
	})
}
