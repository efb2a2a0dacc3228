package database

import (
	"os"
	"time"

	"go-pos-store/internal/logger"
	"go-pos-store/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the MySQL connection described by DB_DSN and syncs the schema.
// The retry loop covers container startups where the database is still booting.
func Connect() {
	log := logger.GetLogger()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set; configure the database connection in .env")
	}

	logLevel := gormlogger.Error
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = gormlogger.Info
	}

	var err error
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(logLevel),
		})
		if err == nil {
			break
		}
		log.Warn("database not ready, retrying in 2 seconds",
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("failed to connect to database after 5 attempts", zap.Error(err))
	}

	log.Info("connected to MySQL")

	if err := Migrate(DB); err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}
	log.Info("database schema synced")
}

// Migrate runs AutoMigrate for the full model set. Split out from Connect so
// tests can run it against their own (sqlite) databases.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
	)
}
