package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScoreSendsRequestAndNormalizes(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"extracted_skills":["Go","SQL"],"missing_skills":["Kubernetes"],"match_percentage":72}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	res, err := client.Score(context.Background(), "resume text", "  go sql kubernetes ")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.ResumeText != "resume text" || got.JobDescription != "go sql kubernetes" {
		t.Fatalf("request = %+v", got)
	}
	if res.MatchPercentage != 72 || len(res.ExtractedSkills) != 2 || res.MissingSkills[0] != "Kubernetes" {
		t.Fatalf("result = %+v", res)
	}
}

func TestScoreFallsBackToDefaultJobDescription(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	res, err := client.Score(context.Background(), "text", "   ")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.JobDescription != DefaultJobDescription {
		t.Fatalf("job description = %q", got.JobDescription)
	}
	if res.ExtractedSkills == nil || res.MissingSkills == nil || res.MatchPercentage != 0 {
		t.Fatalf("absent fields not defaulted: %+v", res)
	}

	custom, _ := NewClient(srv.URL, WithDefaultJobDescription("rust tokio"))
	if _, err := custom.Score(context.Background(), "text", ""); err != nil {
		t.Fatalf("score: %v", err)
	}
	if got.JobDescription != "rust tokio" {
		t.Fatalf("job description = %q", got.JobDescription)
	}
}

func TestScoreClampsPercentage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"match_percentage":140.6}`))
	}))
	defer srv.Close()
	client, _ := NewClient(srv.URL)
	res, err := client.Score(context.Background(), "text", "")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.MatchPercentage != 100 {
		t.Fatalf("match = %d, want 100", res.MatchPercentage)
	}
}

func TestScoreRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	client, _ := NewClient(srv.URL)
	_, err := client.Score(context.Background(), "text", "")
	var scoreErr *Error
	if !errors.As(err, &scoreErr) || scoreErr.Kind != KindRemote || scoreErr.Status != http.StatusBadGateway {
		t.Fatalf("err = %v, want remote 502", err)
	}
}

func TestScoreTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client, _ := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	_, err := client.Score(context.Background(), "text", "")
	var scoreErr *Error
	if !errors.As(err, &scoreErr) || scoreErr.Kind != KindTimeout {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestScoreUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	client, _ := NewClient("http://" + addr)
	_, err = client.Score(context.Background(), "text", "")
	var scoreErr *Error
	if !errors.As(err, &scoreErr) || scoreErr.Kind != KindUnreachable {
		t.Fatalf("err = %v, want unreachable", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("  "); !errors.Is(err, ErrConfigurationMissing) {
		t.Fatalf("err = %v, want ErrConfigurationMissing", err)
	}
}
