// @title           Labor Tracking API
// @version         1.0
// @description     Labor time-tracking backend - timers, manual entries, cost summaries and exports.

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /

// @schemes http https
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"backend/handlers"
	"backend/labor"
	"backend/models"
	"backend/storage"
)

var auditRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// runStaleTimerAudit reports timers that have been running longer than the
// threshold. It only logs; someone forgot to clock out, and a human decides
// what the real end time was. Timers are never auto-closed.
func runStaleTimerAudit(store *storage.EntryStore, threshold time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	entries, err := store.Query(ctx, models.EntryFilter{Status: models.EntryStatusActive})
	if err != nil {
		return err
	}

	cutoff := time.Now().Add(-threshold)
	stale := 0
	for _, entry := range entries {
		if entry.StartTime.Before(cutoff) {
			stale++
			log.Printf("stale timer: entry=%s employee=%s (%s) started %s",
				entry.ID, entry.EmployeeID, entry.EmployeeName,
				entry.StartTime.Format(time.RFC3339))
		}
	}
	if stale > 0 {
		log.Printf("stale timer audit: %d timer(s) running for more than %s", stale, threshold)
	}
	return nil
}

func main() {
	db := storage.InitDB()
	defer db.Close()

	entryStore := storage.NewEntryStore(db)
	engine := labor.NewEngine(entryStore)

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	// ==================== 1. TIMER STATE MACHINE ====================
	r.POST("/api/labor-entries/start", handlers.StartTimer(engine, db))
	r.PUT("/api/labor-entries/:id/stop", handlers.StopTimer(engine, db))
	r.GET("/api/labor-entries/active", handlers.GetActiveTimer(engine))

	// ==================== 2. MANUAL ENTRIES ====================
	r.POST("/api/labor-entries", handlers.AddManualEntry(engine, db))
	r.PUT("/api/labor-entries/:id", handlers.EditEntry(engine, db))
	r.DELETE("/api/labor-entries/:id", handlers.DeleteEntry(engine, db))
	r.GET("/api/labor-entries", handlers.GetLaborEntries(entryStore))

	// ==================== 3. SUMMARY & REPORTS ====================
	r.GET("/api/labor-summary", handlers.GetLaborSummary(engine))
	r.GET("/api/export_labor_entries", handlers.ExportLaborEntriesExcel(engine))
	r.GET("/api/labor_summary_pdf", handlers.GenerateLaborSummaryPDF(engine))

	// ==================== 4. WORK ORDERS ====================
	r.POST("/api/work-orders", handlers.CreateWorkOrder(db))
	r.GET("/api/work-orders", handlers.GetWorkOrders(db))
	r.GET("/api/work-orders/:id", handlers.GetWorkOrder(db))

	// ==================== 5. EMPLOYEES ====================
	r.POST("/api/employees", handlers.CreateEmployee(db))
	r.GET("/api/employees", handlers.GetEmployees(db))
	r.PUT("/api/employees/:id", handlers.UpdateEmployee(db))

	// ==================== 6. ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetActivityLogs(db))

	// ==================== 7. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Nightly audit for timers nobody stopped.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&auditRunning, 0, 1) {
			log.Println("Previous stale timer audit still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&auditRunning, 0)

		if err := runStaleTimerAudit(entryStore, 16*time.Hour); err != nil {
			log.Printf("stale timer audit failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule stale timer audit: %v", err)
	}
	c.Start()
	defer c.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
