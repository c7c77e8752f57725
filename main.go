package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/essaypilot/essaypilot/handlers"
	"github.com/essaypilot/essaypilot/internal/ai"
	"github.com/essaypilot/essaypilot/internal/archive"
	"github.com/essaypilot/essaypilot/internal/config"
	"github.com/essaypilot/essaypilot/internal/database"
	essayhandler "github.com/essaypilot/essaypilot/internal/essay/handler"
	"github.com/essaypilot/essaypilot/internal/essay/repository"
	essayservice "github.com/essaypilot/essaypilot/internal/essay/service"
	"github.com/essaypilot/essaypilot/internal/oidc"
	"github.com/essaypilot/essaypilot/internal/sessions"
	"github.com/essaypilot/essaypilot/internal/tokens"
	"github.com/essaypilot/essaypilot/internal/users"
	"github.com/essaypilot/essaypilot/pkg/logger"
	"github.com/essaypilot/essaypilot/pkg/metrics"
	"github.com/essaypilot/essaypilot/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// log level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: oidc=%v mongo=%v redis=%v gemini=%v",
		cfg.OIDC.Issuer != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Gemini.APIKey != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond
	// to OPTIONS. Production should use a stricter policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var userSvc *users.Service
	var sessionsSvc *sessions.Service

	// Connect to Redis early so the blacklist and rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["sessions"] = sessionsSvc != nil
		deps["users"] = userSvc != nil
		if sessionsSvc == nil {
			ready = false
		}
		deps["verifier"] = verifier != nil
		if verifier == nil {
			ready = false
		}
		deps["model"] = cfg.Gemini.APIKey != ""

		status := gin.H{"deps": deps, "uptime": time.Since(startTime).String()}
		if !ready {
			status["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		status["status"] = "ready"
		c.JSON(http.StatusOK, status)
	})

	ctx := context.Background()

	// Token verification: an external OIDC issuer when configured, otherwise
	// the service's own HS256 access tokens.
	if cfg.OIDC.Issuer != "" && cfg.OIDC.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil {
		if strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true" {
			logger.Warn("enabling insecure token verifier (integration mode)")
			verifier = oidc.NewInsecureVerifier()
		} else if cfg.JWT.Secret != "" {
			verifier = tokens.NewJWTVerifier(cfg.JWT.Secret)
		}
	}

	// Prefer Redis-based sessions when available
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed repositories (users, sessions fallback, essays)
	var essayRepo repository.Repository
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			db := client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
			}
			essayRepo = repository.NewMongoRepo(db.Collection("essays"), db.Collection("analyses"))
		}
	}
	if essayRepo == nil {
		logger.Warnf("MongoDB unavailable, keeping essays in memory")
		essayRepo = repository.NewMemoryRepo()
	}

	// Optional object-storage archive for prior essay revisions
	var archiver essayservice.Archiver
	if cfg.Archive.Endpoint != "" {
		store, err := archive.New(cfg.Archive)
		if err != nil {
			logger.Warnf("failed to initialize revision archive: %v", err)
		} else {
			archiver = store
			logger.Infof("Revision archive enabled: %s/%s", cfg.Archive.Endpoint, cfg.Archive.Bucket)
		}
	}

	essaySvc := essayservice.New(essayRepo, archiver)

	// Auth handlers need both user and session services
	if userSvc != nil && sessionsSvc != nil {
		handlers.NewAuthHandler(cfg, userSvc, sessionsSvc).Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}
	handlers.RegisterSwagger(r)

	// Authenticated API surface: essays CRUD plus analyze/rewrite
	if verifier != nil {
		api := r.Group("/api", middleware.AuthMiddleware(verifier))
		essayhandler.New(essaySvc).Register(api)

		model := ai.NewGeminiClient(cfg.Gemini)
		ai.NewHandler(ai.NewAnalyzer(model), ai.NewRewriter(model), essaySvc).Register(api)
	} else {
		logger.Warnf("no token verifier configured, /api routes not registered")
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting essaypilot on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
