package database

import (
	"academy/config"
	"academy/logger"
	"academy/models"
	"fmt"
	"strings"

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

// Open connects with the dialector matching driver and sizes the pool.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "postgres", "postgresql", "":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		// every new connection would see an empty in-memory database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
	}
	sqlDB.SetConnMaxLifetime(0)
	return db, nil
}

// ConnectDb opens the configured database, migrates it and seeds RBAC and the
// bootstrap admin, then installs it as Database.
func ConnectDb() {
	cfg := config.AppConfig
	db, err := Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		logger.Log.Fatal("failed to connect to database", "driver", cfg.DBDriver, "error", err)
	}
	logger.Log.Info("connected to database", "driver", cfg.DBDriver)

	if err := Migrate(db); err != nil {
		logger.Log.Fatal("migration failed", "error", err)
	}
	if err := SeedRBAC(db); err != nil {
		logger.Log.Fatal("seeding roles failed", "error", err)
	}
	if err := SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, cfg.SaltRound); err != nil {
		logger.Log.Error("seeding admin failed", "error", err)
	}

	Database = DbInstance{Db: db}
}

// Migrate performs database migrations
func Migrate(db *gorm.DB) error {
	logger.Log.Debug("running migrations")

	if err := db.SetupJoinTable(&models.Role{}, "Permissions", &models.RolePermission{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.User{},
		&models.Profile{},
		&models.LoginTracking{},
		&models.Module{},
		&models.Level{},
		&models.LevelTopic{},
		&models.SubTopic{},
		&models.Content{},
		&models.Question{},
		&models.SubTopicTest{},
		&models.LevelTest{},
		&models.ModuleTest{},
		&models.ExamConfiguration{},
		&models.TestAttempt{},
		&models.Enrollment{},
		&models.CertificateTemplate{},
		&models.ContactMessage{},
	)
}
