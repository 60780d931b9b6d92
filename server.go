package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/config"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/models"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/utils"
	"github.com/lesecondbaraka-ctrl/SIGFP6-sub000/workflow"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultPort = "8080"

var tracer trace.Tracer = otel.Tracer("sigfp-engine")

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

// entityMiddleware scopes every request to one accounting entity. Commands
// without the header never reach a handler.
func entityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		entityId := strings.TrimSpace(c.GetHeader("X-Entity-Id"))
		if entityId == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Entity-Id header is required"})
			return
		}
		ctx := utils.SetEntityIdInContext(c.Request.Context(), entityId)
		if userName := strings.TrimSpace(c.GetHeader("X-User")); userName != "" {
			ctx = utils.SetUserNameInContext(ctx, userName)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	_ = godotenv.Load()

	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server first; until DB/Redis are ready, app endpoints
	// return 503.
	r := gin.New()
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization", "X-Entity-Id", "X-User")
	corsConfig.AddExposeHeaders("Content-Length")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	r.Use(entityMiddleware())

	r.POST("/accounts", createAccountHandler)
	r.GET("/accounts", getAccountsHandler)
	r.GET("/accounts/:id", getAccountHandler)
	r.POST("/accounts/:id/activate", markAccountActiveHandler(true))
	r.POST("/accounts/:id/deactivate", markAccountActiveHandler(false))

	r.POST("/periods", createPeriodHandler)
	r.GET("/periods/:id", getPeriodHandler)
	r.POST("/periods/:id/closing/controls", runClosingControlsHandler)
	r.POST("/periods/:id/closing/adjusting-entries", recordAdjustingEntriesHandler)
	r.POST("/periods/:id/closing/close", closeDefinitivelyHandler)

	r.POST("/budget-lines", allocateBudgetLineHandler)
	r.GET("/budget-lines", getBudgetLinesHandler)
	r.GET("/budget-lines/:id", getBudgetLineHandler)
	r.POST("/budget-lines/:id/deactivate", deactivateBudgetLineHandler)

	r.POST("/commitments", engageCommitmentHandler)
	r.GET("/commitments", getCommitmentsHandler)
	r.GET("/commitments/:id", getCommitmentHandler)
	r.POST("/commitments/:id/liquidate", commitmentTransitionHandler("liquidateCommitment", workflow.LiquidateCommitment))
	r.POST("/commitments/:id/authorize", commitmentTransitionHandler("authorizeCommitment", workflow.AuthorizeCommitment))
	r.POST("/commitments/:id/pay", commitmentTransitionHandler("payCommitment", workflow.PayCommitment))

	r.POST("/claims", recognizeClaimHandler)
	r.GET("/claims", getClaimsHandler)
	r.GET("/claims/:id", getClaimHandler)
	r.POST("/claims/:id/liquidate", liquidateClaimHandler)
	r.POST("/claims/:id/collect", collectClaimHandler)

	r.POST("/transfers", createTransferHandler)
	r.GET("/transfers", getTransfersHandler)
	r.POST("/transfers/:id/approve", approveTransferHandler)
	r.POST("/transfers/:id/reject", rejectTransferHandler)

	r.POST("/revisions", createRevisionHandler)
	r.GET("/revisions", getRevisionsHandler)
	r.POST("/revisions/:id/submit", revisionTransitionHandler(workflow.SubmitRevision))
	r.POST("/revisions/:id/approve", revisionTransitionHandler(workflow.ApproveRevision))
	r.POST("/revisions/:id/reject", revisionTransitionHandler(workflow.RejectRevision))

	r.POST("/lettrage", letterEntriesHandler)
	r.GET("/lettrage", getGroupsHandler)
	r.POST("/lettrage/:id/dissolve", dissolveGroupHandler)

	r.POST("/balance-adjustments", recordBalanceAdjustmentHandler)
	r.GET("/balance-adjustments", getBalanceAdjustmentsHandler)

	r.GET("/journals", getJournalsHandler)
	r.GET("/journals/:id", getJournalHandler)

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables; allow running migrations
	// as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		if err := models.MigrateModels(); err != nil {
			logger.WithFields(logrus.Fields{"field": "migrations"}).Panic(err.Error())
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	// Set the session isolation level to READ COMMITTED
	for attempt := 1; ; attempt++ {
		err := db.Exec("SET SESSION TRANSACTION ISOLATION LEVEL READ COMMITTED").Error
		if err == nil {
			break
		}
		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		logger.WithFields(logrus.Fields{
			"field":   "database",
			"attempt": attempt,
		}).Warn("failed to set isolation level; retrying in " + sleep.String() + ": " + err.Error())
		time.Sleep(sleep)
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
