package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// AppState is the SQL row holding one serialized collection.
// "key" is reserved in MySQL, hence state_key.
type AppState struct {
	Key       string `gorm:"column:state_key;primaryKey;size:64"`
	Blob      string `gorm:"type:longtext"`
	UpdatedAt time.Time
}

func (AppState) TableName() string {
	return "app_state"
}

// GormBlobStore implements BlobStore on a SQL database through GORM
type GormBlobStore struct {
	db *gorm.DB
}

// OpenMySQL connects to MySQL, configures the pool and migrates app_state
func OpenMySQL(dsn string) (*GormBlobStore, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	store := NewGormBlobStore(db)
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	log.Printf("✅ Connected to MySQL")
	return store, nil
}

func NewGormBlobStore(db *gorm.DB) *GormBlobStore {
	return &GormBlobStore{db: db}
}

// Migrate creates or updates the app_state table
func (s *GormBlobStore) Migrate() error {
	if err := s.db.AutoMigrate(&AppState{}); err != nil {
		return fmt.Errorf("failed to migrate app_state: %w", err)
	}
	return nil
}

func (s *GormBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	var row AppState
	err := s.db.WithContext(ctx).Where("state_key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Blob), nil
}

func (s *GormBlobStore) Save(ctx context.Context, key string, blob []byte) error {
	row := AppState{Key: key, Blob: string(blob)}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *GormBlobStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&AppState{}).Error
}
