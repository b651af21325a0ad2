package domain

import "time"

// Broadcast event names pushed to connected viewers.
const (
	EventDashboardUpdate = "dashboard:update"
	EventAnalyticsUpdate = "analytics:update"
)

const (
	DefaultRole  = "User"
	DefaultTheme = "light"
)

type Notifications struct {
	EmailAlerts       bool `json:"emailAlerts"`
	PushNotifications bool `json:"pushNotifications"`
	WeeklyReports     bool `json:"weeklyReports"`
	AnalysisComplete  bool `json:"analysisComplete"`
}

type Settings struct {
	Theme         string        `json:"theme"`
	Notifications Notifications `json:"notifications"`
}

// DefaultSettings is what new accounts get and what a reset restores.
func DefaultSettings() Settings {
	return Settings{Theme: DefaultTheme}
}

type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AnalysisRecord is one completed resume scoring. Records are never updated.
type AnalysisRecord struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"user"`
	Filename       string    `json:"filename"`
	Skills         []string  `json:"skills"`
	MissingSkills  []string  `json:"missingSkills"`
	Score          int       `json:"score"`
	ProcessingTime int       `json:"processingTime"`
	StorageKey     string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ScoreResult is the normalized answer of the scoring service.
type ScoreResult struct {
	ExtractedSkills []string `json:"extractedSkills"`
	MissingSkills   []string `json:"missingSkills"`
	MatchPercentage int      `json:"matchPercentage"`
}

type ScoreBucket struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

type DashboardView struct {
	Total             int              `json:"total"`
	Analyzed          int              `json:"analyzed"`
	AvgScore          int              `json:"avgScore"`
	AvgTime           int              `json:"avgTime"`
	TopSkills         map[string]int   `json:"topSkills"`
	RecentResumes     []AnalysisRecord `json:"recentResumes"`
	ScoreDistribution []ScoreBucket    `json:"scoreDistribution"`
}

type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

type AnalyticsView struct {
	TotalApplications   int            `json:"totalApplications"`
	AvgScore            int            `json:"avgScore"`
	ExcellentCandidates int            `json:"excellentCandidates"`
	AvgProcessingTime   int            `json:"avgProcessingTime"`
	ScoreTrends         []ScorePoint   `json:"scoreTrends"`
	TopSkills           map[string]int `json:"topSkills"`
	ApplicationVolume   map[string]int `json:"applicationVolume"`
}
