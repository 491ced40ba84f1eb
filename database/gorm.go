package database

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/config"
	"github.com/sahilchouksey/task-manager-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlitePragmas are appended to the SQLite DSN
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

type GORMStore struct {
	db     *gorm.DB
	driver string
}

// StartGORM initializes a GORM connection using the environment configuration
func StartGORM() (*GORMStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	return NewGORMStore(getEnv)
}

// NewGORMStore opens the database selected by DB_DRIVER (sqlite or postgres)
func NewGORMStore(getEnv *config.EnvironmentVariable) (*GORMStore, error) {
	dialector, err := openDialector(getEnv)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)
	switch getEnv.GO_ENV {
	case "production":
		gormLogger = logger.Default.LogMode(logger.Error)
	case "test":
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
		PrepareStmt:            true,
	})
	if err != nil {
		log.Errorf("Unable to connect to %s with GORM: %v", getEnv.DB_DRIVER, err)
		return nil, err
	}

	// Get underlying *sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if dialector.Name() == "sqlite" {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY between pooled conns
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Infof("Successfully connected to %s database with GORM.", dialector.Name())

	return &GORMStore{db: db, driver: dialector.Name()}, nil
}

func openDialector(getEnv *config.EnvironmentVariable) (gorm.Dialector, error) {
	switch getEnv.DB_DRIVER {
	case "", "sqlite":
		return sqlite.Open(fmt.Sprintf("%s?%s", getEnv.DB_PATH, sqlitePragmas)), nil
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			getEnv.DB_HOST,
			getEnv.DB_USER_NAME,
			getEnv.DB_PASSWORD,
			getEnv.DB_NAME,
			getEnv.DB_PORT,
			getEnv.DB_SSL_MODE,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", getEnv.DB_DRIVER)
	}
}

// Init runs the AutoMigrate to create tables that are missing
func (s *GORMStore) Init() error {
	log.Info("Creating database tables...")

	err := s.db.AutoMigrate(
		&model.Task{},
		&model.CronJobLog{},
	)
	if err != nil {
		log.Errorf("Error running AutoMigrate: %v", err)
		return err
	}

	log.Info("Database tables created.")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Infof("Closing GORM %s connection...", s.driver)
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services/handlers
func (s *GORMStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
