package events

import (
	"encoding/json"
	"testing"
	"time"

	"resxai/pkg/domain"
)

func TestNewAnalysisCompleted(t *testing.T) {
	at := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
	evt := NewAnalysisCompleted(
		domain.Account{ID: "acc-1", Email: "ada@example.com"},
		domain.AnalysisRecord{ID: "rec-1", Filename: "cv.pdf", Score: 72, CreatedAt: at},
	)
	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["type"] != "analysis.completed" || got["recordId"] != "rec-1" || got["score"] != float64(72) {
		t.Fatalf("payload = %s", data)
	}
	if got["occurredAt"] != "2024-06-01T08:30:00Z" {
		t.Fatalf("occurredAt = %v", got["occurredAt"])
	}
}
