package database

import (
	"fmt"

	"educa/config"
	"educa/logger"
	"educa/models"
	"educa/models/course"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// Dialector picks the gorm driver for cfg.DBDriver.
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "postgres", "":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
		)
		return postgres.Open(dsn), nil
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.DBName), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// ConnectDb opens the configured database, migrates it and stores it in Database.
func ConnectDb() {
	cfg := config.AppConfig

	dialector, err := Dialector(cfg)
	if err != nil {
		logger.Log.Fatal("Invalid database configuration", "error", err)
	}

	logLevel := gormlogger.Info
	if cfg.AppMode == "prod" {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("Failed to get database instance", "error", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(0)

	if err := Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", "error", err)
	}

	Database = DbInstance{Db: db}
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	logger.Log.Info("Running migrations")

	err := db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.LoginTracking{},
		&course.Subject{},
		&course.Course{},
		&course.Module{},
		&course.Content{},
		&course.Text{},
		&course.Video{},
		&course.Image{},
		&course.File{},
		&course.Enrollment{},
	)
	if err != nil {
		return err
	}

	logger.Log.Info("Migrations completed successfully")
	return nil
}

// OpenMemory opens a private in-memory sqlite database with every table migrated.
func OpenMemory() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// every connection to :memory: is a new database, so pin one
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
