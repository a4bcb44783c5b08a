package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"

	"mlstudio"
	"mlstudio/internal/api/handler/endpoints"
	"mlstudio/internal/api/models"
	"mlstudio/internal/api/service"
	"mlstudio/internal/api/websocket"
	"mlstudio/internal/compile"
	"mlstudio/internal/compile/nodes"
	"mlstudio/pkg"
)

func main() {
	mlstudio.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if mlstudio.GetConfig().Mode == "dev" {
		if err := mlstudio.DB.AutoMigrate(
			&models.User{},
			&models.Workflow{},
			&models.Node{},
			&models.Edge{},
			&models.ScriptRun{},
		); err != nil {
			mlstudio.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		mlstudio.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	// The node catalog must be complete before any graph is compiled
	if regErrs := compile.DefaultRegistry.RegisterAll(nodes.All()); len(regErrs) > 0 {
		for _, regErr := range regErrs {
			mlstudio.Logger.Error().Err(regErr.Err).Str("type", regErr.Type).Msg("Node registration failed")
		}
		mlstudio.Logger.Fatal().Int("failed", len(regErrs)).Msg("Node catalog is incomplete")
	}
	mlstudio.Logger.Info().Int("nodes", compile.DefaultRegistry.Len()).Msg("Node catalog registered")

	pkg.InitializeEmailProviders()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(mlstudio.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Initialize WebSocket components
	workflowService := service.NewWorkflowService()
	compileService := service.NewCompileService()
	processor := websocket.NewMessageProcessor(workflowService, compileService, mlstudio.Logger)
	hub := websocket.NewHub(mlstudio.Logger)
	go hub.Run()
	mlstudio.Logger.Info().Msg("WebSocket hub started")

	// Relay run progress from the runner into editor rooms
	bridge, err := websocket.NewNATSBridge(mlstudio.GetConfig().NatsURL, hub, mlstudio.Logger)
	if err != nil {
		mlstudio.Logger.Warn().Err(err).Msg("NATS unavailable, run progress will not reach editors")
	} else {
		if err := bridge.Subscribe(); err != nil {
			mlstudio.Logger.Warn().Err(err).Msg("NATS subscription failed")
		}
		defer bridge.Close()
	}

	initAPI(router, hub, processor)

	mlstudio.Logger.Debug().Msgf("Starting CORE API on port %s", mlstudio.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		mlstudio.Logger.Fatal().Msg(err.Error())
		panic(err)
	}

}

func initAPI(router *graceful.Graceful, hub *websocket.Hub, processor *websocket.MessageProcessor) {
	endpoints.AuthHandler(router)
	endpoints.WorkflowHandler(router)
	endpoints.CatalogHandler(router)
	endpoints.SqlHandler(router)
	endpoints.DbHandler(router)
	endpoints.WebSocketHandler(router, hub, processor)
}
