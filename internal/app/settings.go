package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"resxai/internal/export"
	"resxai/internal/insights"
	"resxai/pkg/domain"
)

type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SettingsView is the settings payload shown to the account owner.
type SettingsView struct {
	Profile       Profile              `json:"profile"`
	Notifications domain.Notifications `json:"notifications"`
	Theme         string               `json:"theme"`
}

// ProfileUpdate carries the profile fields a caller wants to change.
// Email is fixed after registration.
type ProfileUpdate struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type NotificationsUpdate struct {
	EmailAlerts       *bool `json:"emailAlerts"`
	PushNotifications *bool `json:"pushNotifications"`
	WeeklyReports     *bool `json:"weeklyReports"`
	AnalysisComplete  *bool `json:"analysisComplete"`
}

// SettingsUpdate overwrites only the fields that are present.
type SettingsUpdate struct {
	Profile       *ProfileUpdate       `json:"profile"`
	Notifications *NotificationsUpdate `json:"notifications"`
	Theme         *string              `json:"theme"`
}

// ExportData is the full dump of an account's data.
type ExportData struct {
	User    domain.Account          `json:"user"`
	Resumes []domain.AnalysisRecord `json:"resumes"`
}

func NewSettingsView(a domain.Account) SettingsView {
	return SettingsView{
		Profile:       Profile{Name: a.Name, Email: a.Email, Role: a.Role},
		Notifications: a.Settings.Notifications,
		Theme:         a.Settings.Theme,
	}
}

func (a *App) GetSettings(accountID string) (SettingsView, error) {
	account, err := a.account(accountID)
	if err != nil {
		return SettingsView{}, err
	}
	return NewSettingsView(account), nil
}

// UpdateSettings applies upd field by field and returns the stored result.
func (a *App) UpdateSettings(accountID string, upd SettingsUpdate) (SettingsView, error) {
	account, err := a.account(accountID)
	if err != nil {
		return SettingsView{}, err
	}
	if p := upd.Profile; p != nil {
		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				return SettingsView{}, fmt.Errorf("%w: name cannot be empty", ErrInvalidSettings)
			}
			account.Name = name
		}
		if p.Role != nil {
			account.Role = strings.TrimSpace(*p.Role)
		}
	}
	if n := upd.Notifications; n != nil {
		apply(&account.Settings.Notifications.EmailAlerts, n.EmailAlerts)
		apply(&account.Settings.Notifications.PushNotifications, n.PushNotifications)
		apply(&account.Settings.Notifications.WeeklyReports, n.WeeklyReports)
		apply(&account.Settings.Notifications.AnalysisComplete, n.AnalysisComplete)
	}
	if upd.Theme != nil {
		theme := strings.TrimSpace(*upd.Theme)
		if theme == "" {
			return SettingsView{}, fmt.Errorf("%w: theme cannot be empty", ErrInvalidSettings)
		}
		account.Settings.Theme = theme
	}
	return a.saveSettings(account)
}

// ResetSettings restores the default theme and clears every notification flag.
func (a *App) ResetSettings(accountID string) (SettingsView, error) {
	account, err := a.account(accountID)
	if err != nil {
		return SettingsView{}, err
	}
	account.Settings = domain.DefaultSettings()
	return a.saveSettings(account)
}

func (a *App) saveSettings(account domain.Account) (SettingsView, error) {
	account.UpdatedAt = a.now().UTC()
	if err := a.store.UpdateAccount(account); err != nil {
		return SettingsView{}, fmt.Errorf("update account: %w", err)
	}
	return NewSettingsView(account), nil
}

// Export returns the account together with all of its records.
func (a *App) Export(accountID string) (ExportData, error) {
	account, err := a.account(accountID)
	if err != nil {
		return ExportData{}, err
	}
	records, err := a.store.ListRecordsByOwner(account.ID)
	if err != nil {
		return ExportData{}, fmt.Errorf("list records: %w", err)
	}
	return ExportData{User: account, Resumes: records}, nil
}

// ExportWorkbook writes the same data as Export as an xlsx workbook.
func (a *App) ExportWorkbook(w io.Writer, accountID string) error {
	data, err := a.Export(accountID)
	if err != nil {
		return err
	}
	return export.WriteWorkbook(w, data.User, data.Resumes)
}

// DeleteAllRecords removes every analysis record of the account, including
// archived originals, and returns how many records were deleted.
func (a *App) DeleteAllRecords(ctx context.Context, accountID string) (int, error) {
	account, err := a.account(accountID)
	if err != nil {
		return 0, err
	}
	var keys []string
	if a.archive != nil {
		records, err := a.store.ListRecordsByOwner(account.ID)
		if err != nil {
			return 0, fmt.Errorf("list records: %w", err)
		}
		for _, r := range records {
			if r.StorageKey != "" {
				keys = append(keys, r.StorageKey)
			}
		}
	}
	n, err := a.store.DeleteRecordsByOwner(account.ID)
	if err != nil {
		return 0, fmt.Errorf("delete records: %w", err)
	}
	for _, key := range keys {
		if err := a.archive.Delete(ctx, key); err != nil {
			a.logger.Warn("remove archived resume failed", "key", key, "error", err)
		}
	}
	a.notifyChanged(ctx)
	return n, nil
}

// Dashboard summarizes all records of the account.
func (a *App) Dashboard(accountID string) (domain.DashboardView, error) {
	records, err := a.store.ListRecordsByOwner(accountID)
	if err != nil {
		return domain.DashboardView{}, fmt.Errorf("list records: %w", err)
	}
	return insights.Dashboard(records), nil
}

// Analytics summarizes the records created in the last days days.
func (a *App) Analytics(accountID string, days int) (domain.AnalyticsView, error) {
	if days < 0 {
		return domain.AnalyticsView{}, ErrInvalidDays
	}
	now := a.now()
	records, err := a.store.ListRecordsSince(accountID, insights.WindowStart(now, days))
	if err != nil {
		return domain.AnalyticsView{}, fmt.Errorf("list records: %w", err)
	}
	return insights.Analytics(records, now, days), nil
}

func (a *App) account(id string) (domain.Account, error) {
	account, ok, err := a.store.GetAccountByID(id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok {
		return domain.Account{}, ErrAccountNotFound
	}
	return account, nil
}

func apply(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
