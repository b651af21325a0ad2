package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"resxai/pkg/domain"
)

// DefaultJobDescription is used when an upload carries no job description.
const DefaultJobDescription = "python java javascript react node express django flask fastapi mongodb mysql postgresql sql git github docker linux aws machine learning pandas numpy scikit-learn"

const DefaultTimeout = 20 * time.Second

// ErrConfigurationMissing means no scoring service URL was configured.
var ErrConfigurationMissing = errors.New("AI service URL not configured")

type Kind int

const (
	KindFailed Kind = iota
	KindTimeout
	KindRemote
	KindUnreachable
)

// Error describes a failed call to the scoring service.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "AI service timeout"
	case KindRemote:
		return fmt.Sprintf("AI service error: %d", e.Status)
	case KindUnreachable:
		return "AI service unreachable"
	default:
		return "failed to process resume with AI service"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Client calls the resume scoring service over HTTP.
type Client struct {
	baseURL        string
	jobDescription string
	httpClient     *http.Client
}

type Option func(*Client)

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithDefaultJobDescription replaces the built-in fallback job description.
func WithDefaultJobDescription(text string) Option {
	return func(c *Client) {
		if text = strings.TrimSpace(text); text != "" {
			c.jobDescription = text
		}
	}
}

// NewClient constructs a scoring client for baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrConfigurationMissing
	}
	c := &Client{
		baseURL:        baseURL,
		jobDescription: DefaultJobDescription,
		httpClient:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type analyzeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

type analyzeResponse struct {
	ExtractedSkills []string `json:"extracted_skills"`
	MissingSkills   []string `json:"missing_skills"`
	MatchPercentage *float64 `json:"match_percentage"`
}

// Score sends resume text and a job description to the scoring service.
// A blank job description falls back to the configured default.
func (c *Client) Score(ctx context.Context, resumeText, jobDescription string) (domain.ScoreResult, error) {
	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		jd = c.jobDescription
	}
	data, err := json.Marshal(analyzeRequest{ResumeText: resumeText, JobDescription: jd})
	if err != nil {
		return domain.ScoreResult{}, &Error{Kind: KindFailed, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(data))
	if err != nil {
		return domain.ScoreResult{}, &Error{Kind: KindFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ScoreResult{}, classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.ScoreResult{}, &Error{Kind: KindRemote, Status: resp.StatusCode}
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return domain.ScoreResult{}, &Error{Kind: KindTimeout, Err: err}
		}
		return domain.ScoreResult{}, &Error{Kind: KindFailed, Err: fmt.Errorf("decode response: %w", err)}
	}
	return normalize(out), nil
}

func classify(err error) error {
	if isTimeout(err) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return &Error{Kind: KindUnreachable, Err: err}
	}
	return &Error{Kind: KindFailed, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func normalize(in analyzeResponse) domain.ScoreResult {
	out := domain.ScoreResult{
		ExtractedSkills: in.ExtractedSkills,
		MissingSkills:   in.MissingSkills,
	}
	if out.ExtractedSkills == nil {
		out.ExtractedSkills = []string{}
	}
	if out.MissingSkills == nil {
		out.MissingSkills = []string{}
	}
	if in.MatchPercentage != nil && !math.IsNaN(*in.MatchPercentage) {
		score := int(math.Round(*in.MatchPercentage))
		out.MatchPercentage = min(max(score, 0), 100)
	}
	return out
}
