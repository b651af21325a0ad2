package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resxai/internal/events"
	"resxai/internal/realtime"
	"resxai/internal/util"
	"resxai/pkg/auth"
	"resxai/pkg/domain"
	"resxai/pkg/scoring"
	"resxai/pkg/storage"
	"resxai/pkg/store"
)

// Extractor turns a staged upload into text and removes the file.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Scorer rates resume text against a job description.
type Scorer interface {
	Score(ctx context.Context, resumeText, jobDescription string) (domain.ScoreResult, error)
}

// Config holds the collaborators of the application core.
type Config struct {
	Store     store.Store
	Sessions  store.SessionStore
	Extractor Extractor
	Scorer    Scorer

	// Optional.
	Notifier              realtime.Notifier
	Archive               storage.ObjectStore
	Events                events.Publisher
	DefaultJobDescription string
	Logger                *slog.Logger
	Clock                 func() time.Time
}

// App implements the account, upload and reporting use-cases.
type App struct {
	store     store.Store
	sessions  store.SessionStore
	extractor Extractor
	scorer    Scorer
	notifier  realtime.Notifier
	archive   storage.ObjectStore
	events    events.Publisher
	defaultJD string
	logger    *slog.Logger
	now       func() time.Time
}

func New(cfg Config) (*App, error) {
	switch {
	case cfg.Store == nil:
		return nil, errors.New("store required")
	case cfg.Sessions == nil:
		return nil, errors.New("session store required")
	case cfg.Extractor == nil:
		return nil, errors.New("extractor required")
	case cfg.Scorer == nil:
		return nil, errors.New("scorer required")
	}
	a := &App{
		store:     cfg.Store,
		sessions:  cfg.Sessions,
		extractor: cfg.Extractor,
		scorer:    cfg.Scorer,
		notifier:  cfg.Notifier,
		archive:   cfg.Archive,
		events:    cfg.Events,
		defaultJD: strings.TrimSpace(cfg.DefaultJobDescription),
		logger:    cfg.Logger,
		now:       cfg.Clock,
	}
	if a.notifier == nil {
		a.notifier = realtime.Nop{}
	}
	if a.defaultJD == "" {
		a.defaultJD = scoring.DefaultJobDescription
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a, nil
}

// Register creates an account with default role and settings and signs it in.
func (a *App) Register(name, email, password string) (domain.Account, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return domain.Account{}, "", ErrNameEmailPasswordRequired
	}
	_, exists, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.Account{}, "", ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := a.now().UTC()
	account := domain.Account{
		ID:           util.NewID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.DefaultRole,
		Settings:     domain.DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateAccount(account); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return domain.Account{}, "", ErrEmailAlreadyExists
		}
		return domain.Account{}, "", fmt.Errorf("save account: %w", err)
	}
	token, err := a.sessions.NewSession(account.ID)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("issue session: %w", err)
	}
	return account, token, nil
}

// Login validates credentials and issues a session token.
func (a *App) Login(email, password string) (domain.Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.Account{}, "", ErrInvalidCredentials
	}
	account, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("fetch account: %w", err)
	}
	if !ok || !auth.CheckPassword(password, account.PasswordHash) {
		return domain.Account{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(account.ID)
	if err != nil {
		return domain.Account{}, "", fmt.Errorf("issue session: %w", err)
	}
	return account, token, nil
}

// AccountFromToken resolves the account a session token belongs to.
func (a *App) AccountFromToken(token string) (domain.Account, bool) {
	id, ok, err := a.sessions.GetAccountIDByToken(token)
	if err != nil || !ok {
		return domain.Account{}, false
	}
	account, found, err := a.store.GetAccountByID(id)
	if err != nil || !found {
		return domain.Account{}, false
	}
	return account, true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *App) notifyChanged(ctx context.Context) {
	a.notifier.Publish(ctx, domain.EventDashboardUpdate)
	a.notifier.Publish(ctx, domain.EventAnalyticsUpdate)
}
