package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"CalicoFM/cache"
	"CalicoFM/config"
	"CalicoFM/core/radio"
	"CalicoFM/db"
	"CalicoFM/logger"
	"CalicoFM/repository"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// NewRouter builds the full route table. Split out of Start so tests can run
// requests against the real router without a listening socket.
func NewRouter(apiHandler *APIHandler, hub *NowPlayingHub, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	// 按编码路径匹配：曲目标识可能含斜杠（如 "AC/DC"），
	// 解码后会被当作路径分隔符，导致评分路由永远匹配不上
	router.UseEncodedPath()

	// CORS 中间件
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// 请求ID中间件，响应头和日志共用同一个ID
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-Id", requestID)

			logger.Debug("request",
				logger.String("id", requestID),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path))

			next.ServeHTTP(w, r)
		})
	})

	// API Endpoints
	router.HandleFunc("/api", apiHandler.WelcomeHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/health", apiHandler.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/client-ip", apiHandler.ClientIPHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ratings", apiHandler.SubmitRatingHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/ratings/{artist}/{title}", apiHandler.GetRatingCountsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/ratings/{artist}/{title}/user/{fingerprint}", apiHandler.GetUserRatingHandler).Methods(http.MethodGet)

	if hub != nil {
		router.HandleFunc("/api/nowplaying", hub.NowPlayingHandler).Methods(http.MethodGet)
		router.HandleFunc("/ws/nowplaying", hub.ServeWS)
	}

	// Frontend UI serving
	uiFileServer := http.FileServer(http.Dir(cfg.WebAppDir))
	router.PathPrefix("/").Handler(uiFileServer)

	return router
}

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	})

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		logger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect database with GORM", logger.ErrorField(err))
	}
	defer db.CloseGormDB()

	// Redis is an optimization: without it every counts read hits the store.
	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("Redis unavailable, rating counts will not be cached", logger.ErrorField(err))
	} else {
		defer cache.CloseRedis()
		logger.Info("Successfully connected to Redis")
	}

	ratingRepo := repository.NewGormRatingRepository(db.GormDB)
	apiHandler := NewAPIHandler(ratingRepo, cfg)
	hub := NewNowPlayingHub()

	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	if cfg.EnableRelay && cfg.MetadataURL != "" {
		relayClient := radio.NewClient(cfg.APIBaseURL, cfg.MetadataURL)
		go hub.Run(relayCtx, relayClient, cfg.PollInterval)
		logger.Info("now-playing relay enabled",
			logger.String("feed", cfg.MetadataURL),
			logger.Duration("interval", cfg.PollInterval))
	}

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      NewRouter(apiHandler, hub, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 创建一个通道来接收操作系统信号
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ServerAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server...")
	cancelRelay()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
