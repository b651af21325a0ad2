package store

import (
	"time"

	"gorm.io/datatypes"

	"resxai/pkg/domain"
)

// GORM models used for persistence.
type AccountModel struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"not null"`
	Email         string `gorm:"uniqueIndex;not null"`
	PasswordHash  string `gorm:"not null"`
	Role          string `gorm:"not null"`
	Theme         string `gorm:"not null"`
	Notifications datatypes.JSONType[domain.Notifications] `gorm:"type:jsonb"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time
}

type AnalysisRecordModel struct {
	ID             string                      `gorm:"primaryKey"`
	OwnerID        string                      `gorm:"not null;index:idx_records_owner_created"`
	Filename       string                      `gorm:"not null"`
	Skills         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	MissingSkills  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Score          int                         `gorm:"not null"`
	ProcessingTime int                         `gorm:"not null"`
	StorageKey     string
	CreatedAt      time.Time `gorm:"not null;index:idx_records_owner_created"`
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		PasswordHash:  a.PasswordHash,
		Role:          a.Role,
		Theme:         a.Settings.Theme,
		Notifications: datatypes.NewJSONType(a.Settings.Notifications),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		Settings: domain.Settings{
			Theme:         m.Theme,
			Notifications: m.Notifications.Data(),
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func recordToModel(r domain.AnalysisRecord) AnalysisRecordModel {
	return AnalysisRecordModel{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Filename:       r.Filename,
		Skills:         datatypes.JSONSlice[string](nonNil(r.Skills)),
		MissingSkills:  datatypes.JSONSlice[string](nonNil(r.MissingSkills)),
		Score:          r.Score,
		ProcessingTime: r.ProcessingTime,
		StorageKey:     r.StorageKey,
		CreatedAt:      r.CreatedAt,
	}
}

func recordFromModel(m AnalysisRecordModel) domain.AnalysisRecord {
	return domain.AnalysisRecord{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Filename:       m.Filename,
		Skills:         nonNil([]string(m.Skills)),
		MissingSkills:  nonNil([]string(m.MissingSkills)),
		Score:          m.Score,
		ProcessingTime: m.ProcessingTime,
		StorageKey:     m.StorageKey,
		CreatedAt:      m.CreatedAt,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
