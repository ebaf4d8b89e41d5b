package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"remaudio-service/internal/api/handlers"
	"remaudio-service/internal/api/middleware"
	"remaudio-service/internal/config"
	"remaudio-service/internal/multiplay"
	"remaudio-service/internal/repositories/postgres"
	"remaudio-service/internal/services"
	"remaudio-service/internal/storage"
)

type Router struct {
	engine           *gin.Engine
	wsHandler        *handlers.WSHandler
	multiplayHandler *handlers.MultiplayHandler
	authHandler      *handlers.AuthHandler
	userHandler      *handlers.UserHandler
	songHandler      *handlers.SongHandler
	playlistHandler  *handlers.PlaylistHandler
	rateLimitMW      *middleware.RateLimitMiddleware
	authMW           *middleware.AuthMiddleware
}

func NewRouter(
	cfg *config.Config,
	db *gorm.DB,
	minioClient *storage.MinIOClient,
	redisService *services.RedisService,
	hub *multiplay.Hub,
	mpHandler *multiplay.Handler,
	rooms *multiplay.RoomRegistry,
	conns *multiplay.ConnectionRegistry,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	songRepo := postgres.NewSongRepository(db)
	playlistRepo := postgres.NewPlaylistRepository(db)

	// Services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)
	songService := services.NewSongService(songRepo, minioClient)
	playlistService := services.NewPlaylistService(playlistRepo)

	return &Router{
		engine:           engine,
		wsHandler:        handlers.NewWSHandler(hub, mpHandler, redisService),
		multiplayHandler: handlers.NewMultiplayHandler(rooms, conns, hub),
		authHandler:      handlers.NewAuthHandler(userService),
		userHandler:      handlers.NewUserHandler(userService, redisService),
		songHandler:      handlers.NewSongHandler(songService),
		playlistHandler:  handlers.NewPlaylistHandler(playlistService),
		rateLimitMW:      middleware.NewRateLimitMiddleware(redisService),
		authMW:           middleware.NewAuthMiddleware(cfg.JWT.Secret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// WebSocket endpoint for the playback relay. Clients may attach
	// anonymously; rooms enforce their own authorization.
	api.GET("/multiplay/ws", r.wsHandler.HandleWebSocket)
	api.GET("/multiplay/rooms/:id", r.multiplayHandler.GetRoom)
	api.GET("/multiplay/stats", r.multiplayHandler.GetStats)

	// Authenticated routes
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		users := auth.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			users.GET("/me", r.userHandler.GetProfile)
			users.PATCH("/me", r.userHandler.UpdateProfile)
			users.GET("/search", r.userHandler.SearchUsers)
			users.GET("/online", r.userHandler.GetOnlineUsers)
		}

		songs := auth.Group("/songs")
		songs.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			songs.POST("", r.songHandler.Upload)
			songs.GET("", r.songHandler.ListSongs)
			songs.GET("/search", r.songHandler.SearchSongs)
			songs.GET("/:id", r.songHandler.GetSong)
			songs.PATCH("/:id", r.songHandler.UpdateSong)
			songs.DELETE("/:id", r.songHandler.DeleteSong)
		}

		playlists := auth.Group("/playlists")
		playlists.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			playlists.POST("", r.playlistHandler.CreatePlaylist)
			playlists.GET("", r.playlistHandler.ListPlaylists)
			playlists.GET("/:id", r.playlistHandler.GetPlaylist)
			playlists.PATCH("/:id", r.playlistHandler.UpdatePlaylist)
			playlists.DELETE("/:id", r.playlistHandler.DeletePlaylist)
			playlists.POST("/:id/songs", r.playlistHandler.AddSongs)
			playlists.DELETE("/:id/songs/:songId", r.playlistHandler.RemoveSong)
		}
	}

	// Public routes (no authentication required)
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
