package main

import (
	"os"
	"time"

	"go-pos-store/internal/database"
	"go-pos-store/internal/handlers"
	"go-pos-store/internal/logger"
	"go-pos-store/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.GetLogger().Warn("no .env file found, relying on environment")
	}
	log := logger.GetLogger()
	defer log.Sync()

	database.Connect()

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/login", handlers.Login)
	r.Static("/uploads", "./uploads")

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Warn("registration route is OPEN, disable this in production")
	} else {
		log.Info("registration route is disabled")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// STAFF & ADMIN
		api.GET("/products", handlers.GetProducts)
		api.GET("/get-product", handlers.GetProductByBarcode)
		api.POST("/save-sale", handlers.SaveSale)
		api.GET("/categories", handlers.ListCategories)
		api.GET("/sales", handlers.ListSales)
		api.GET("/invoice/:transaction_id", handlers.GetInvoice)
		api.GET("/dashboard", handlers.GetDashboard)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)

			admin.POST("/upload", handlers.UploadImage)
			admin.POST("/products", handlers.AddProduct)
			admin.PUT("/products/:id", handlers.UpdateProduct)
			admin.DELETE("/products/:id", handlers.DeleteProduct)
			admin.POST("/categories", handlers.CreateCategory)
			admin.PUT("/categories/:id", handlers.UpdateCategory)
			admin.DELETE("/categories/:id", handlers.DeleteCategory)
			admin.GET("/reports/valuation", handlers.GetStockValuation)
		}
	}

	// Report chart data and CSV export, admin only
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"))
	{
		reports.GET("/data", handlers.GetReportsData)
		reports.GET("/export", handlers.ExportReportsCSV)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info("server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		log.Fatal("server failed to start", zap.Error(err))
	}
}
