package models

import (
	"testing"
	"time"
)

func TestParseTargetDate(t *testing.T) {
	r := CreateScenarioRequest{TargetDate: "2030-06-01"}
	got, err := r.ParseTargetDate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTargetDateEmpty(t *testing.T) {
	r := CreateScenarioRequest{TargetDate: "  "}
	got, err := r.ParseTargetDate()
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestParseTargetDateInvalid(t *testing.T) {
	r := CreateScenarioRequest{TargetDate: "next tuesday"}
	if _, err := r.ParseTargetDate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestChange24hDefaultsToZero(t *testing.T) {
	s := MarketSnapshot{Price: 1}
	if s.Change24h() != 0 {
		t.Fatalf("expected 0, got %v", s.Change24h())
	}
	v := -4.2
	s.PriceChange24h = &v
	if s.Change24h() != -4.2 {
		t.Fatalf("expected -4.2, got %v", s.Change24h())
	}
}
