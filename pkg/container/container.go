package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pagesmith-backend/internal/config"
	businessRepo "pagesmith-backend/internal/domains/business/repository"
	pageHandler "pagesmith-backend/internal/domains/page/handler"
	pageJob "pagesmith-backend/internal/domains/page/job"
	"pagesmith-backend/internal/domains/page/render"
	pageRepo "pagesmith-backend/internal/domains/page/repository"
	pageService "pagesmith-backend/internal/domains/page/service"
	"pagesmith-backend/internal/domains/page/synth"
	publishHandler "pagesmith-backend/internal/domains/publish/handler"
	publishJob "pagesmith-backend/internal/domains/publish/job"
	publishService "pagesmith-backend/internal/domains/publish/service"
	infraCache "pagesmith-backend/internal/infrastructure/cache"
	"pagesmith-backend/internal/infrastructure/cdn"
	"pagesmith-backend/internal/infrastructure/database"
	"pagesmith-backend/internal/infrastructure/llm"
	"pagesmith-backend/internal/infrastructure/queue"
	"pagesmith-backend/internal/infrastructure/storage"
	"pagesmith-backend/pkg/cache"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API and the
// worker.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config  *config.Config
	DB      *database.PostgresDB
	Redis   *infraCache.RedisClient
	Cache   cache.Cache
	Storage *storage.MinIOStorage
	Purger  cdn.Purger
	Queue   *asynq.Client
	Engine  *render.Engine

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	BusinessRepo *businessRepo.CachedRepository
	PageRepo     pageRepo.RepositoryInterface

	// ========================================
	// SERVICE LAYER
	// ========================================
	PageService    pageService.ServiceInterface
	PublishService publishService.ServiceInterface

	// ========================================
	// HANDLER LAYER
	// ========================================
	PageHandler    *pageHandler.Handler
	PublishHandler *publishHandler.Handler

	// ========================================
	// TASK HANDLERS
	// ========================================
	GeneratePagesJob *pageJob.GeneratePagesHandler
	PublishPagesJob  *publishJob.PublishPagesHandler
	AutoPublishJob   *publishJob.AutoPublishHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer wires config, infrastructure, repositories, services and
// handlers in that order.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] config loaded")

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRepositories(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initServices(); err != nil {
		c.Cleanup()
		return nil, err
	}
	c.initHandlers()

	log.Info().Msg("[CONTAINER] dependency graph ready")
	return c, nil
}

// ========================================
// STEP 1: INFRASTRUCTURE
// ========================================
func (c *Container) initInfrastructure() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c.DB = database.NewPostgresDB(c.Config.Database)
	if err := c.DB.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	c.Redis = infraCache.NewRedisClient(c.Config.Redis.Host, c.Config.Redis.Password, c.Config.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, "pagesmith:")

	st, err := storage.NewMinIOStorage(ctx, c.Config.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = st

	c.Purger = cdn.NewPurger(c.Config.CDN)
	c.Queue = queue.NewClient(c.Config.Jobs, c.Config.Redis.Password)

	engine, err := render.NewEngine(render.Site{
		Name:    c.Config.Site.Name,
		BaseURL: c.Config.Site.BaseURL(),
	}, render.WithLocation(c.Config.Site.Location()))
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	c.Engine = engine

	return nil
}

// ========================================
// STEP 2: REPOSITORIES
// ========================================
func (c *Container) initRepositories() error {
	if c.DB.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	c.BusinessRepo = businessRepo.NewCachedRepository(
		businessRepo.NewRepository(c.DB.Pool),
		c.Cache,
		c.Config.Redis.BusinessTTL,
	)
	c.PageRepo = pageRepo.NewRepository(c.DB.Pool)
	return nil
}

// ========================================
// STEP 3: SERVICES
// ========================================
func (c *Container) initServices() error {
	var provider synth.Provider
	if c.Config.LLM.APIKey != "" {
		provider = llm.NewAnthropicProvider(c.Config.LLM)
	} else {
		log.Warn().Msg("[CONTAINER] ANTHROPIC_API_KEY not set, page metadata will use fallbacks")
	}

	c.PageService = pageService.NewService(
		c.BusinessRepo,
		c.PageRepo,
		synth.NewSynthesizer(provider),
		c.Engine,
		pageService.WithWorkers(c.Config.Jobs.GenerationWorkers),
	)

	alias := ""
	if c.Config.Site.AliasHost != "" {
		alias = c.Config.Site.Scheme + "://" + c.Config.Site.AliasHost
	}
	c.PublishService = publishService.NewService(
		c.PageRepo,
		c.Storage,
		c.Purger,
		c.Engine,
		publishService.Config{
			BaseURL:      c.Config.Site.BaseURL(),
			AliasBaseURL: alias,
			Workers:      c.Config.Jobs.GenerationWorkers,
		},
		publishService.WithBusinessCache(c.BusinessRepo),
	)
	return nil
}

// ========================================
// STEP 4: HANDLERS
// ========================================
func (c *Container) initHandlers() {
	c.PageHandler = pageHandler.NewHandler(c.PageService, c.Queue, c.Config.Jobs.GenerateQueue)
	c.PublishHandler = publishHandler.NewHandler(c.PublishService, c.Queue, c.Config.Jobs.PublishQueue)

	c.GeneratePagesJob = pageJob.NewGeneratePagesHandler(c.PageService)
	c.PublishPagesJob = publishJob.NewPublishPagesHandler(c.PublishService)
	c.AutoPublishJob = publishJob.NewAutoPublishHandler(c.PublishService)
}

// HealthCheck pings the datastore and Redis.
func (c *Container) HealthCheck(ctx context.Context) map[string]string {
	status := map[string]string{"database": "ok", "redis": "ok", "storage": "ok"}
	if err := c.DB.HealthCheck(ctx); err != nil {
		status["database"] = err.Error()
	}
	if err := c.Redis.HealthCheck(ctx); err != nil {
		status["redis"] = err.Error()
	}
	if err := c.Storage.HealthCheck(ctx); err != nil {
		status["storage"] = err.Error()
	}
	return status
}

// Cleanup releases every opened resource. Safe on a partially built container.
func (c *Container) Cleanup() {
	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] queue client close failed")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] redis close failed")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
