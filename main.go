package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/unicorn-hrms/backend/internal/cache"
	"github.com/unicorn-hrms/backend/internal/config"
	"github.com/unicorn-hrms/backend/internal/db"
	"github.com/unicorn-hrms/backend/internal/handler"
	"github.com/unicorn-hrms/backend/internal/model"
	"github.com/unicorn-hrms/backend/internal/queue"
	"github.com/unicorn-hrms/backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("[Main] postgres init failed: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("[Main] schema init failed: %v", err)
	}
	if err := db.SeedRoles(ctx, pool); err != nil {
		log.Fatalf("[Main] role seeding failed: %v", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("[Main] redis init failed: %v", err)
	}
	defer redisClient.Close()

	userStore := db.NewUserStore(pool)
	roleStore := db.NewRoleStore(pool)
	resetStore := cache.NewResetTokenStore(redisClient)
	publisher := queue.NewPublisher(cfg.Queue.URL)

	authSvc, err := service.NewAuthService(userStore, roleStore, resetStore, publisher, cfg.Auth)
	if err != nil {
		log.Fatalf("[Main] auth service init failed: %v", err)
	}
	roleSvc := service.NewRoleService(userStore, roleStore)

	authHandler := handler.NewAuthHandler(authSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)

	router := gin.Default()
	if cfg.Server.AllowedOrigins != "" {
		router.Use(handler.CORSMiddleware(splitOrigins(cfg.Server.AllowedOrigins)))
	}

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh-token", authHandler.Refresh)
	auth.POST("/request-password-reset", authHandler.RequestPasswordReset)
	auth.POST("/reset-password", authHandler.ResetPassword)

	protected := auth.Group("", handler.AuthMiddleware(authSvc))
	protected.POST("/revoke-token", authHandler.Revoke)
	protected.POST("/change-password", authHandler.ChangePassword)
	protected.GET("/me", authHandler.Me)

	admin := v1.Group("/users",
		handler.AuthMiddleware(authSvc),
		handler.RequireRoles(model.RoleAdmin, model.RoleSuperAdmin),
	)
	admin.POST("/:id/roles", roleHandler.Assign)
	admin.GET("/:id/roles", roleHandler.List)
	admin.DELETE("/:id/roles/:role", roleHandler.Revoke)

	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("[Main] server stopped: %v", err)
	}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
