package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/userhub/backend/internal/config"
	"github.com/userhub/backend/internal/db"
	"github.com/userhub/backend/internal/handler"
	"github.com/userhub/backend/internal/service"
	"github.com/userhub/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	database, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}

	authService, err := service.NewAuthService(database, database, cfg.Auth)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	userService := service.NewUserService(database, database)

	avatars, err := storage.NewAvatarStore(cfg.Upload.AvatarDir)
	if err != nil {
		log.Fatalf("avatar store: %v", err)
	}

	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.AllowCredentials))

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(userService, avatars)

	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)
	router.Static("/uploads/avatars", avatars.Dir())

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", handler.AuthMiddleware(authService), authHandler.Me)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("", handler.AuthMiddleware(authService), userHandler.List)
		users.GET("/:id", handler.AuthMiddleware(authService), userHandler.Get)
		users.PUT("/:id", handler.AuthMiddleware(authService), userHandler.Update)
		users.DELETE("/:id", handler.AuthMiddleware(authService), userHandler.Delete)
	}

	profile := api.Group("/profile")
	{
		authed := profile.Group("", handler.AuthMiddleware(authService))
		{
			authed.GET("/me", profileHandler.Me)
			authed.PUT("/me", profileHandler.UpdateMe)
			authed.PUT("/me/privacy", profileHandler.UpdatePrivacy)
			authed.POST("/me/avatar", profileHandler.UploadAvatar)
			authed.DELETE("/me/avatar", profileHandler.DeleteAvatar)
			authed.GET("/stats/me", profileHandler.Stats)
		}

		public := profile.Group("", handler.OptionalAuthMiddleware(authService))
		{
			public.GET("", profileHandler.Search)
			public.GET("/:id", profileHandler.Get)
			public.GET("/username/:username", profileHandler.GetByUsername)
		}
	}

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
