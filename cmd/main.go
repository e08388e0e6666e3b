package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"famledger/internal/caching"
	"famledger/internal/config"
	"famledger/internal/handlers"
	"famledger/internal/jobs"
	"famledger/internal/middleware"
	"famledger/internal/repositories"
	"famledger/internal/services"
	"famledger/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load(os.Getenv("FAMLEDGER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Auth.App.Secret == "" || cfg.Auth.Console.Secret == "" {
		log.Fatal("APP_JWT_SECRET and CONSOLE_JWT_SECRET are required")
	}

	pool, err := database.NewPool(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	operatorRepo := repositories.NewOperatorRepo(pool)
	familyRepo := repositories.NewFamilyRepo(pool)
	membershipRepo := repositories.NewMembershipRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	permissionRepo := repositories.NewPermissionRepo(pool)
	moduleRepo := repositories.NewModuleRepo(pool)

	// Independent token namespaces for the end-user app and the console
	appTokens := services.NewTokenService(cacheSvc, cfg.Auth.App.Secret, "app", time.Duration(cfg.Auth.App.TTLMinutes)*time.Minute)
	consoleTokens := services.NewTokenService(cacheSvc, cfg.Auth.Console.Secret, "console", time.Duration(cfg.Auth.Console.TTLMinutes)*time.Minute)

	appAuth := services.NewAuthService(userRepo, appTokens, membershipRepo, roleRepo)
	consoleAuth := services.NewAuthService(operatorRepo, consoleTokens, nil, nil)

	rbacSvc := services.NewRBACService(membershipRepo, roleRepo, permissionRepo, moduleRepo, cfg.RBAC.InheritedRoleCodes)

	protectionRules := make(map[string]services.ProtectionRule, len(cfg.Protection))
	for resource, rule := range cfg.Protection {
		protectionRules[resource] = services.ProtectionRule{
			Identifiers: rule.Identifiers,
			Actions:     rule.Actions,
			Message:     rule.Message,
		}
	}
	protectionPolicy := services.NewProtectionPolicy(protectionRules)

	familyGuard := middleware.NewFamilyGuard(familyRepo, membershipRepo, rbacSvc)

	// Handlers
	appAuthHandlers := handlers.NewAuthHandlers(appAuth)
	consoleAuthHandlers := handlers.NewAuthHandlers(consoleAuth)
	userHandlers := handlers.NewUserHandlers(userRepo)
	familyHandlers := handlers.NewFamilyHandlers(familyRepo, membershipRepo, roleRepo)
	roleHandlers := handlers.NewRoleHandlers(roleRepo, protectionPolicy)
	rbacHandlers := handlers.NewRBACHandlers(rbacSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background jobs
	sweeper, err := jobs.NewInviteSweeper(
		membershipRepo,
		time.Duration(cfg.Jobs.InviteSweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.Jobs.InviteMaxAgeDays)*24*time.Hour,
	)
	if err != nil {
		log.Fatalf("Failed to create invite sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Public endpoints
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// End-user app
	v1 := e.Group("/v1")
	auth := v1.Group("/auth")
	auth.POST("/login", appAuthHandlers.Login)
	auth.POST("/register", userHandlers.Register)
	// Logout stays outside the gate so revoking an already-dead token
	// still succeeds
	auth.POST("/logout", appAuthHandlers.Logout)

	protected := v1.Group("")
	protected.Use(middleware.Authentication(appTokens))
	protected.GET("/me", appAuthHandlers.Me)
	protected.PUT("/me", userHandlers.UpdateProfile)
	protected.GET("/permissions", rbacHandlers.GetPermissions)
	protected.GET("/nav", rbacHandlers.GetNav)

	// No tenant exists yet for these calls, so the guard is skipped
	protected.GET("/families", familyHandlers.ListMine)
	protected.POST("/families", familyHandlers.Create)
	protected.POST("/families/accept", familyHandlers.AcceptInvite)

	// Tenant-scoped routes: familyId comes from query, body or header
	protected.GET("/family", familyHandlers.Get, familyGuard.Require())
	protected.PUT("/family", familyHandlers.Update, familyGuard.Require("fin:family:update"))
	protected.DELETE("/family", familyHandlers.Delete, familyGuard.Require("fin:family:delete"))
	protected.GET("/family/members", familyHandlers.ListMembers, familyGuard.Require("fin:member:read"))
	protected.POST("/family/members", familyHandlers.InviteMember, familyGuard.Require("fin:member:invite"))
	protected.PUT("/family/members/:id/status", familyHandlers.UpdateMemberStatus, familyGuard.Require("fin:member:update"))

	protected.GET("/roles", roleHandlers.List, familyGuard.Require("fin:role:read"))
	protected.POST("/roles", roleHandlers.Create, familyGuard.Require("fin:role:create"))
	protected.PUT("/roles/:id", roleHandlers.Update, familyGuard.Require("fin:role:update"))
	protected.DELETE("/roles/:id", roleHandlers.Delete, familyGuard.Require("fin:role:delete"))
	protected.PUT("/roles/:id/status", roleHandlers.UpdateStatus, familyGuard.Require("fin:role:update"))

	// Platform operator console
	console := e.Group("/console/v1")
	console.POST("/auth/login", consoleAuthHandlers.Login)
	console.POST("/auth/logout", consoleAuthHandlers.Logout)

	consoleProtected := console.Group("")
	consoleProtected.Use(middleware.Authentication(consoleTokens))
	consoleProtected.GET("/me", consoleAuthHandlers.Me)

	log.Printf("famledger v%s starting on port %d", version, cfg.Server.Port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
