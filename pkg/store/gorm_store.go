package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resxai/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog, TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &AnalysisRecordModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateAccount inserts a new account, failing with ErrEmailTaken on a duplicate email.
func (s *GormStore) CreateAccount(a domain.Account) error {
	model := accountToModel(a)
	if err := s.db.Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// UpdateAccount overwrites the mutable account fields.
func (s *GormStore) UpdateAccount(a domain.Account) error {
	model := accountToModel(a)
	res := s.db.Model(&AccountModel{}).Where("id = ?", a.ID).Updates(map[string]any{
		"name":          model.Name,
		"role":          model.Role,
		"theme":         model.Theme,
		"notifications": model.Notifications,
		"updated_at":    model.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetAccountByEmail looks up an account by email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// GetAccountByID returns an account by ID.
func (s *GormStore) GetAccountByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// SaveRecord inserts an analysis record. Records are never updated.
func (s *GormStore) SaveRecord(r domain.AnalysisRecord) error {
	model := recordToModel(r)
	return s.db.Create(&model).Error
}

// ListRecordsByOwner returns all records of an owner, oldest first.
func (s *GormStore) ListRecordsByOwner(ownerID string) ([]domain.AnalysisRecord, error) {
	return s.listRecords(s.db.Where("owner_id = ?", ownerID))
}

// ListRecordsSince returns records of an owner created at or after since.
func (s *GormStore) ListRecordsSince(ownerID string, since time.Time) ([]domain.AnalysisRecord, error) {
	return s.listRecords(s.db.Where("owner_id = ? AND created_at >= ?", ownerID, since))
}

func (s *GormStore) listRecords(q *gorm.DB) ([]domain.AnalysisRecord, error) {
	var models []AnalysisRecordModel
	if err := q.Order("created_at asc").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.AnalysisRecord, 0, len(models))
	for _, m := range models {
		res = append(res, recordFromModel(m))
	}
	return res, nil
}

// DeleteRecordsByOwner removes every record of an owner and reports how many went.
func (s *GormStore) DeleteRecordsByOwner(ownerID string) (int, error) {
	res := s.db.Where("owner_id = ?", ownerID).Delete(&AnalysisRecordModel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}
