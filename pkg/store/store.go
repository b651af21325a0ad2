package store

import (
	"errors"
	"time"

	"resxai/pkg/domain"
)

// ErrEmailTaken is returned when an account with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// Store defines persistence operations for accounts and analysis records.
type Store interface {
	// accounts
	CreateAccount(domain.Account) error
	UpdateAccount(domain.Account) error
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(id string) (domain.Account, bool, error)

	// analysis records
	SaveRecord(domain.AnalysisRecord) error
	ListRecordsByOwner(ownerID string) ([]domain.AnalysisRecord, error)
	ListRecordsSince(ownerID string, since time.Time) ([]domain.AnalysisRecord, error)
	DeleteRecordsByOwner(ownerID string) (int, error)
}

// SessionStore issues and resolves session tokens.
type SessionStore interface {
	NewSession(accountID string) (string, error)
	GetAccountIDByToken(token string) (string, bool, error)
}
