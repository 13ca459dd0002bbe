package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"powerwrite-backend/internal/config"
	"powerwrite-backend/internal/infrastructure/ai"
	infraCache "powerwrite-backend/internal/infrastructure/cache"
	"powerwrite-backend/internal/infrastructure/database"
	"powerwrite-backend/internal/infrastructure/storage"
	"powerwrite-backend/pkg/cache"
	"powerwrite-backend/pkg/jwt"

	bookHandler "powerwrite-backend/internal/domains/book/handler"
	bookRepo "powerwrite-backend/internal/domains/book/repository"
	bookService "powerwrite-backend/internal/domains/book/service"
	"powerwrite-backend/internal/domains/generation"
	genHandler "powerwrite-backend/internal/domains/generation/handler"
	genRepo "powerwrite-backend/internal/domains/generation/repository"
	genService "powerwrite-backend/internal/domains/generation/service"
	"powerwrite-backend/internal/domains/outline"
	outlineHandler "powerwrite-backend/internal/domains/outline/handler"
	outlineRepo "powerwrite-backend/internal/domains/outline/repository"
	outlineService "powerwrite-backend/internal/domains/outline/service"
	"powerwrite-backend/internal/domains/user"
	userHandler "powerwrite-backend/internal/domains/user/handler"
	userRepo "powerwrite-backend/internal/domains/user/repository"
	userService "powerwrite-backend/internal/domains/user/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything in it is
// a singleton built once at startup.
type Container struct {
	// Infrastructure
	Config      *config.Config
	DB          *database.PostgresDB
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	Storage     *storage.MinIOStorage
	AsynqClient *asynq.Client
	AIService   *ai.AIService

	// Repositories
	UserRepo    user.Repository
	BookRepo    bookRepo.RepositoryInterface
	OutlineRepo outline.Repository
	JobRepo     generation.Repository

	// Services
	UserService       user.Service
	BookService       bookService.ServiceInterface
	ExportService     bookService.ExportServiceInterface
	OutlineService    outline.Service
	GenerationService generation.Service
	JobService        generation.JobService

	// Handlers
	UserHandler    *userHandler.UserHandler
	BookHandler    *bookHandler.Handler
	OutlineHandler *outlineHandler.Handler
	GenHandler     *genHandler.Handler
}

// NewContainer builds the whole dependency graph, in order:
// config -> infrastructure -> repositories -> services -> handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisCache := infraCache.NewRedisCache(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)

	// Redis failure is non-critical: the app runs without cache.
	if rc, ok := redisCache.(*infraCache.RedisCache); ok {
		if err := rc.Connect(context.Background()); err != nil {
			log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
		} else {
			log.Println("✅ Redis connected")
		}
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	// ========================================
	// STEP 4: OBJECT STORAGE + QUEUE + AI
	// ========================================
	log.Println("📦 Connecting to MinIO...")

	minioStorage, err := storage.NewMinIOStorage(cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("failed to init MinIO storage: %w", err)
	}
	c.Storage = minioStorage
	log.Println("✅ MinIO ready")

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c.AIService = ai.NewAIService(ai.NewClient(cfg.AI))

	// ========================================
	// STEP 5: REPOSITORIES
	// ========================================
	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	// ========================================
	// STEP 6: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	// The actor middleware falls back to this account for anonymous
	// requests, so it must exist before the first request arrives.
	if _, err := c.UserService.EnsureDemoUser(context.Background(), cfg.Demo.UserEmail); err != nil {
		return nil, fmt.Errorf("failed to seed demo user: %w", err)
	}
	log.Printf("✅ Demo account ready (%s)", cfg.Demo.UserEmail)

	// ========================================
	// STEP 7: HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool)
	c.BookRepo = bookRepo.NewPostgresRepository(pool)
	c.OutlineRepo = outlineRepo.NewPostgresRepository(pool)
	c.JobRepo = genRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.UserService = userService.NewUserService(c.UserRepo, c.JWTManager)
	c.BookService = bookService.NewBookService(c.BookRepo, c.Cache, c.Storage)
	c.ExportService = bookService.NewExportService(c.BookRepo, c.Storage)
	c.OutlineService = outlineService.NewOutlineService(c.OutlineRepo)

	c.GenerationService = genService.NewGenerationService(
		c.JobRepo,
		c.AIService,
		c.BookService, // BookGateway
		c.UserService, // CreditDebiter
		c.AsynqClient,
	)
	c.JobService = genService.NewJobService(c.JobRepo, c.UserRepo, c.AsynqClient, c.Storage)
}

func (c *Container) initHandlers() {
	c.UserHandler = userHandler.NewUserHandler(c.UserService)
	c.BookHandler = bookHandler.NewHandler(c.BookService, c.ExportService, c.Cache)
	c.OutlineHandler = outlineHandler.NewHandler(c.OutlineService)
	c.GenHandler = genHandler.NewHandler(c.GenerationService, c.JobService)
}

// Cleanup releases infrastructure connections. Call on shutdown.
func (c *Container) Cleanup() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Asynq client close failed: %v", err)
		}
	}
	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Printf("⚠️  Redis close failed: %v", err)
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	log.Println("👋 Container closed")
}
