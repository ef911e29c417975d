package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KevPtsm/w-diet-sub000/matador"
)

// Handler holds shared dependencies (db pool, engine, config) for all route handlers.
type Handler struct {
	db        *pgxpool.Pool
	dashboard *matador.Aggregator
	profiles  matador.ProfileRepository
	meals     *mealLogStore
	clock     matador.Clock
	openAI    OpenAIConfig
}

// newHandler wires the pgx-backed repositories into the dashboard engine.
func newHandler(pool *pgxpool.Pool, cfg Config) *Handler {
	profiles := &profileStore{db: pool}
	weights := &weightLogStore{db: pool}
	meals := &mealLogStore{db: pool}
	return &Handler{
		db:        pool,
		dashboard: matador.NewAggregator(profiles, weights, meals, cfg.goalMultipliers()),
		profiles:  profiles,
		meals:     meals,
		clock:     matador.SystemClock{},
		openAI:    cfg.OpenAI,
	}
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](db dbtx, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := db.Query(ctx, sql, args)
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
func queryMany[T any](db dbtx, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := db.Query(ctx, sql, args)
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

/* ─── Per-request time ────────────────────────────────────────────────── */

// userLocation returns the timezone authMiddleware resolved for the user.
func userLocation(c *gin.Context) *time.Location {
	if v, ok := c.Get("timezone"); ok {
		if loc, ok := v.(*time.Location); ok && loc != nil {
			return loc
		}
	}
	return time.UTC
}

// timeSource pairs the handler clock with the user's calendar.
func (h *Handler) timeSource(c *gin.Context) matador.TimeSource {
	return matador.InZone(h.clock, userLocation(c))
}

// parseLocalDate parses YYYY-MM-DD as local midnight in the user's timezone.
func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, loc)
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn)
// because managed Postgres closes idle connections.
func getDBPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	// Simple protocol avoids "cached plan must not change result type"
	// errors from server-side prepared statement caches after migrations.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return pgxpool.NewWithConfig(ctx, config)
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.GET("/ping", func(c *gin.Context) { c.JSON(200, gin.H{"message": "pong"}) })
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/dashboard", h.getDashboard)
	api.GET("/profile", h.getProfile)
	api.PATCH("/profile", h.patchProfile)
	api.GET("/cycle", h.getCycle)
	api.POST("/cycle/start", h.startCycle)
	api.DELETE("/cycle", h.stopCycle)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.createWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/meal-log/daily", h.getDailySummary)
	api.GET("/meal-log/week-summary", h.getWeekSummary)
	api.POST("/meal-log/items", h.createMealLogItem)
	api.PUT("/meal-log/items/:id", h.updateMealLogItem)
	api.DELETE("/meal-log/items/:id", h.deleteMealLogItem)
	api.POST("/meal-log/suggest", h.suggestMealLogItem)
}
