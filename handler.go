package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultRenderTimeout bounds the PDF renderer invocation when
// RENDER_TIMEOUT_MS is not set.
const defaultRenderTimeout = 30 * time.Second

// Handler holds shared dependencies (db pool, renderer config) for all route handlers.
type Handler struct {
	db              *pgxpool.Pool
	rendererBaseURL string        // Base URL for the headless render service (overridable for tests)
	renderTimeout   time.Duration // Caller-side deadline for a single render attempt
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// managed Postgres providers close idle connections after a few minutes.
func getDBPool() *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(os.Getenv("DB_URL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("DB pool ready!")
	return pool
}

// renderTimeoutFromEnv reads RENDER_TIMEOUT_MS, falling back to the 30s default
// on absence or garbage.
func renderTimeoutFromEnv() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("RENDER_TIMEOUT_MS"))
	if err != nil || ms <= 0 {
		return defaultRenderTimeout
	}
	return time.Duration(ms) * time.Millisecond
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/calculator/energy-profile", h.postEnergyProfile)

	api.GET("/clients", h.getClients)
	api.POST("/clients", h.createClient)
	api.GET("/clients/:id", h.getClient)

	api.GET("/plans", h.getPlans)
	api.POST("/plans", h.createPlan)
	api.GET("/plans/:id", h.getPlan)
	api.PUT("/plans/:id", h.updatePlan)
	api.DELETE("/plans/:id", h.deletePlan)
	api.GET("/plans/:id/totals", h.getPlanTotals)
	api.POST("/plans/:id/meals", h.addMeal)
	api.PUT("/plans/:id/meals/:index", h.updateMeal)
	api.DELETE("/plans/:id/meals/:index", h.removeMeal)
	api.GET("/plans/:id/export", h.exportPlanHandler)
}
