// Package export renders an account's data as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"resxai/pkg/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	profileSheet = "Profile"
	resumeSheet  = "Resumes"
)

var resumeHeaders = []string{"Filename", "Score", "Skills", "Missing Skills", "Processing Time (s)", "Created At"}

// WriteWorkbook writes a two-sheet workbook with the account profile and all
// of its analysis records to w.
func WriteWorkbook(w io.Writer, account domain.Account, records []domain.AnalysisRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", profileSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(resumeSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeProfile(f, account, headerStyle); err != nil {
		return fmt.Errorf("write profile sheet: %w", err)
	}
	if err := writeResumes(f, records, headerStyle); err != nil {
		return fmt.Errorf("write resume sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeProfile(f *excelize.File, account domain.Account, headerStyle int) error {
	_ = f.SetColWidth(profileSheet, "A", "A", 22)
	_ = f.SetColWidth(profileSheet, "B", "B", 40)
	rows := [][]any{
		{"Field", "Value"},
		{"Name", account.Name},
		{"Email", account.Email},
		{"Role", account.Role},
		{"Theme", account.Settings.Theme},
		{"Email Alerts", account.Settings.Notifications.EmailAlerts},
		{"Push Notifications", account.Settings.Notifications.PushNotifications},
		{"Weekly Reports", account.Settings.Notifications.WeeklyReports},
		{"Analysis Complete", account.Settings.Notifications.AnalysisComplete},
		{"Member Since", account.CreatedAt.UTC().Format(time.RFC3339)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(profileSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetCellStyle(profileSheet, "A1", "B1", headerStyle)
}

func writeResumes(f *excelize.File, records []domain.AnalysisRecord, headerStyle int) error {
	_ = f.SetColWidth(resumeSheet, "A", "A", 30)
	_ = f.SetColWidth(resumeSheet, "C", "D", 45)
	_ = f.SetColWidth(resumeSheet, "E", "F", 22)
	if err := f.SetSheetRow(resumeSheet, "A1", &resumeHeaders); err != nil {
		return err
	}
	for i, r := range records {
		row := []any{
			r.Filename,
			r.Score,
			strings.Join(r.Skills, ", "),
			strings.Join(r.MissingSkills, ", "),
			r.ProcessingTime,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(resumeSheet, cell, &row); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(resumeHeaders), 1)
	return f.SetCellStyle(resumeSheet, "A1", last, headerStyle)
}
