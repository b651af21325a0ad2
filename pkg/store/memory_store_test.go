package store

import (
	"errors"
	"testing"
	"time"

	"resxai/pkg/domain"
)

func TestMemoryStoreAccounts(t *testing.T) {
	s := NewMemoryStore()
	acc := domain.Account{ID: "a1", Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: domain.DefaultRole, Settings: domain.DefaultSettings()}
	if err := s.CreateAccount(acc); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := acc
	dup.ID = "a2"
	if err := s.CreateAccount(dup); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}

	acc.Name = "Ada L."
	acc.Email = "changed@example.com"
	acc.Settings.Theme = "dark"
	if err := s.UpdateAccount(acc); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok, err := s.GetAccountByEmail("ada@example.com")
	if err != nil || !ok {
		t.Fatalf("get by email: ok=%v err=%v", ok, err)
	}
	if got.Name != "Ada L." || got.Settings.Theme != "dark" || got.Email != "ada@example.com" {
		t.Fatalf("account = %+v", got)
	}
	if _, ok, _ := s.GetAccountByID("missing"); ok {
		t.Fatalf("unexpected account")
	}
	if err := s.UpdateAccount(domain.Account{ID: "missing"}); err == nil {
		t.Fatalf("expected error updating missing account")
	}
}

func TestMemoryStoreRecords(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	for i, owner := range []string{"a1", "a2", "a1", "a1"} {
		r := domain.AnalysisRecord{
			ID:        string(rune('a' + i)),
			OwnerID:   owner,
			Skills:    []string{"Go"},
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := s.SaveRecord(r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	all, _ := s.ListRecordsByOwner("a1")
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	all[0].Skills[0] = "mutated"
	again, _ := s.ListRecordsByOwner("a1")
	if again[0].Skills[0] != "Go" {
		t.Fatalf("store leaked internal slice")
	}

	since, _ := s.ListRecordsSince("a1", base.Add(2*24*time.Hour))
	if len(since) != 2 {
		t.Fatalf("len(since) = %d, want 2 (boundary inclusive)", len(since))
	}

	n, err := s.DeleteRecordsByOwner("a1")
	if err != nil || n != 3 {
		t.Fatalf("delete = (%d, %v), want 3", n, err)
	}
	left, _ := s.ListRecordsByOwner("a2")
	if len(left) != 1 {
		t.Fatalf("other owner records touched")
	}
}
