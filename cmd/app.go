package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"agentcrew/app/handler"
	"agentcrew/internal/coordinator"
	"agentcrew/internal/registry"
	"agentcrew/pkg/completion"
	"agentcrew/pkg/config"
	"agentcrew/pkg/knowledge"
	"agentcrew/pkg/logger"
	mysqlstore "agentcrew/pkg/store/mysql"

	"github.com/gin-gonic/gin"
)

// Application manages the lifecycle of the entire application
type Application struct {
	// Infrastructure components
	config    *config.Config
	datastore *mysqlstore.Datastore

	// Orchestration layer
	knowledgeStore   *knowledge.Store
	completionClient completion.Client
	registry         *registry.Registry
	coordinator      *coordinator.Coordinator

	// Handler layer
	taskHandler   *handler.TaskHandler
	reportHandler *handler.ReportHandler
	chatHandler   *handler.ChatHandler

	// HTTP server
	httpServer *http.Server
	ginEngine  *gin.Engine

	// Context management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Cleanup functions, executed in reverse registration order
	cleanupFuncs []func()
}

// NewApplication creates a new Application instance
func NewApplication() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:          ctx,
		cancel:       cancel,
		cleanupFuncs: make([]func(), 0),
	}
}

// Initialize initializes all application components
func (app *Application) Initialize() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"Configuration", app.initConfig},
		{"Logging", app.initLogger},
		{"MySQL", app.initMySQL},
		{"Knowledge Base", app.initKnowledge},
		{"Completion Service", app.initCompletion},
		{"Agent Pool", app.initAgents},
		{"Coordinator", app.initCoordinator},
		{"Handler Layer", app.initHandlers},
		{"HTTP Server", app.initHTTPServer},
	}

	for _, step := range steps {
		logger.InfoCtx(app.ctx, "Initializing %s...", step.name)
		if err := step.fn(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
		logger.InfoCtx(app.ctx, "%s initialized successfully", step.name)
	}

	logger.InfoCtx(app.ctx, "Application initialization completed")
	return nil
}

// Start starts the HTTP server
func (app *Application) Start() error {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		addr := fmt.Sprintf(":%d", app.config.Server.Port)
		logger.InfoCtx(app.ctx, "HTTP server listening on: %s", addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalCtx(app.ctx, "HTTP server error: %v", err)
		}
	}()

	logger.InfoCtx(app.ctx, "All components started successfully")
	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown(timeout time.Duration) error {
	logger.InfoCtx(app.ctx, "Starting graceful shutdown (timeout: %v)...", timeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	app.cancel()

	// Stop accepting new requests, let in-flight submits finish.
	logger.InfoCtx(app.ctx, "Shutting down HTTP server...")
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(app.ctx, "HTTP server shutdown error: %v", err)
	}

	// Wait for pending sink writes before closing connections.
	done := make(chan struct{})
	go func() {
		app.coordinator.Drain()
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.InfoCtx(app.ctx, "All background work completed")
	case <-shutdownCtx.Done():
		logger.WarnCtx(app.ctx, "Shutdown timeout, some work may not have completed")
	}

	for i := len(app.cleanupFuncs) - 1; i >= 0; i-- {
		app.cleanupFuncs[i]()
	}

	logger.Sync()

	logger.InfoCtx(app.ctx, "Graceful shutdown completed")
	return nil
}

// registerCleanup registers cleanup function
func (app *Application) registerCleanup(cleanup func()) {
	app.cleanupFuncs = append(app.cleanupFuncs, cleanup)
}
