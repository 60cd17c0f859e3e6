package main

import (
	"fmt"
	"net/http"
	"time"

	"agentcrew/app/handler"
	"agentcrew/app/router"
	"agentcrew/internal/agent"
	"agentcrew/internal/coordinator"
	"agentcrew/internal/registry"
	"agentcrew/pkg/completion"
	"agentcrew/pkg/config"
	"agentcrew/pkg/knowledge"
	"agentcrew/pkg/logger"
	mysqlstore "agentcrew/pkg/store/mysql"

	"github.com/gin-gonic/gin"
)

// initConfig loads configuration
func (app *Application) initConfig() error {
	if err := config.Init(); err != nil {
		return err
	}
	app.config = config.GlobalConfig
	return nil
}

// initLogger initializes logging
func (app *Application) initLogger() error {
	if err := logger.Init(); err != nil {
		return err
	}
	app.registerCleanup(func() {
		logger.Sync()
	})
	return nil
}

// initMySQL opens the report archive store. It is optional, the
// coordinator runs fully in memory without it.
func (app *Application) initMySQL() error {
	if !app.config.MySQL.Enabled {
		logger.InfoCtx(app.ctx, "MySQL disabled, reports and task archive will not be persisted")
		return nil
	}

	ds, err := mysqlstore.NewDatastore(app.config.MySQL.DSN())
	if err != nil {
		return err
	}

	app.datastore = ds
	app.registerCleanup(func() {
		ds.Close()
		logger.InfoCtx(app.ctx, "MySQL connection has been closed")
	})

	return nil
}

// initKnowledge loads the shared knowledge base agents quote from.
func (app *Application) initKnowledge() error {
	cfg := app.config.Knowledge
	switch cfg.Source {
	case "dir":
		store, err := knowledge.LoadDir(cfg.Path)
		if err != nil {
			return err
		}
		app.knowledgeStore = store
	case "redis":
		store, err := knowledge.LoadRedis(app.ctx, cfg.Redis)
		if err != nil {
			return err
		}
		app.knowledgeStore = store
	case "none", "":
		logger.InfoCtx(app.ctx, "knowledge base disabled")
		return nil
	default:
		return fmt.Errorf("unknown knowledge source: %q", cfg.Source)
	}

	logger.InfoCtx(app.ctx, "knowledge base loaded, source: %s, documents: %d",
		cfg.Source, app.knowledgeStore.Len())
	return nil
}

// initCompletion builds the completion client with its failure guard.
func (app *Application) initCompletion() error {
	cfg := app.config.Completion
	if cfg.BaseURL == "" {
		return fmt.Errorf("completion.base_url is required")
	}

	client := completion.NewHTTPClient(cfg)
	app.completionClient = completion.NewGuarded(client,
		cfg.MaxFailures, time.Duration(cfg.CooldownSecs)*time.Second)
	return nil
}

// initAgents builds the agent pool from configuration.
func (app *Application) initAgents() error {
	if len(app.config.Agents) == 0 {
		return fmt.Errorf("at least one agent must be configured")
	}

	app.registry = registry.New()
	for _, ac := range app.config.Agents {
		a := agent.New(ac.Name, ac.Role, ac.Skills, app.completionClient, app.knowledgeStore)
		if err := app.registry.Register(a); err != nil {
			return err
		}
		logger.InfoCtx(app.ctx, "agent registered, name: %s, role: %s, skills: %v",
			ac.Name, ac.Role, ac.Skills)
	}
	return nil
}

// initCoordinator wires the coordinator over the pool.
func (app *Application) initCoordinator() error {
	app.coordinator = coordinator.New(app.registry, app.completionClient)

	if timeout := app.config.Completion.TimeoutSeconds; timeout > 0 {
		app.coordinator.SetExecutionTimeout(time.Duration(timeout) * time.Second)
	}
	if app.datastore != nil {
		app.coordinator.SetSink(coordinator.NewMySQLSink(app.datastore))
	}
	return nil
}

// initHandlers initializes the handler layer
func (app *Application) initHandlers() error {
	app.taskHandler = handler.NewTaskHandler(app.coordinator)
	app.reportHandler = handler.NewReportHandler(app.coordinator)
	app.chatHandler = handler.NewChatHandler(app.coordinator)
	return nil
}

// initHTTPServer builds the gin engine and HTTP server
func (app *Application) initHTTPServer() error {
	r := router.NewRouter(app.taskHandler, app.reportHandler, app.chatHandler)

	gin.SetMode(app.config.Server.Mode)

	app.ginEngine = gin.New()
	r.Setup(app.ginEngine)

	app.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.ginEngine,
	}

	return nil
}
