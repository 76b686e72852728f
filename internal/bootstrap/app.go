package bootstrap

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/khaihoang/tradedoc_generation_sample/internal/config"
	"github.com/khaihoang/tradedoc_generation_sample/internal/handler"
	"github.com/khaihoang/tradedoc_generation_sample/internal/logger"
	"github.com/khaihoang/tradedoc_generation_sample/internal/service"
)

type App struct {
	Echo *echo.Echo
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}

	// Initialize logging
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH)
	logger.SetLevel(config.DefaultEnvConfig.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	// Initialize dependencies
	genSvc := service.NewGenerationService(service.GenerationOptions{
		MappingConfigPath: config.DefaultEnvConfig.MAPPING_CONFIG_PATH,
		TemplateDir:       config.DefaultEnvConfig.TEMPLATE_DIR,
		ForceStrict:       config.DefaultEnvConfig.STRICT_MAPPINGS,
	})
	mapSvc := service.NewMappingService(config.DefaultEnvConfig.MAPPING_CONFIG_PATH)
	genHandler := handler.NewGenerationHandler(genSvc)
	mapHandler := handler.NewMappingHandler(mapSvc)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(genHandler, mapHandler)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(genHandler *handler.GenerationHandler, mapHandler *handler.MappingHandler) {
	api := a.Echo.Group("/api/v1")

	api.POST("/configs/generate", genHandler.GenerateConfigHandler)
	api.POST("/documents/export", genHandler.ExportDocumentHandler)
	api.POST("/quantity/describe", genHandler.DescribeHandler)

	api.GET("/mappings", mapHandler.ListHandler)
	api.POST("/mappings/sheets", mapHandler.AddSheetHandler)
	api.POST("/mappings/headers", mapHandler.AddHeaderHandler)
	api.GET("/mappings/report", mapHandler.ReportHandler)
}

func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}
