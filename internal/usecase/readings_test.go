package usecase

import (
	"context"
	"testing"
	"time"
)

func TestGetReadingsRejectsInvertedRange(t *testing.T) {
	uc := NewReadingsUseCase(&fakeReadingStore{})
	now := time.Now()

	_, err := uc.GetReadings(context.Background(), GetReadingsParams{
		Area: "Anand Vihar",
		From: now,
		To:   now.Add(-time.Hour),
	})
	if err == nil {
		t.Fatal("inverted range must be rejected")
	}
}

func TestGetReadingsRequiresArea(t *testing.T) {
	uc := NewReadingsUseCase(&fakeReadingStore{})
	if _, err := uc.GetReadings(context.Background(), GetReadingsParams{}); err == nil {
		t.Fatal("missing area must be rejected")
	}
}

func TestGetReadingsWidensRangeToHours(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(4)}
	uc := NewReadingsUseCase(store)

	from := time.Date(2024, 10, 16, 8, 40, 0, 0, time.UTC)
	to := time.Date(2024, 10, 16, 11, 5, 0, 0, time.UTC)
	res, err := uc.GetReadings(context.Background(), GetReadingsParams{
		Area: "Anand Vihar",
		From: from,
		To:   to,
	})
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}

	if !store.rangeFrom.Equal(time.Date(2024, 10, 16, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("query from = %v, want hour boundary", store.rangeFrom)
	}
	if !store.rangeTo.Equal(time.Date(2024, 10, 16, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("query to = %v, want next hour boundary", store.rangeTo)
	}
	if res.Count != 4 || len(res.Readings) != 4 {
		t.Fatalf("count = %d readings = %d, want 4", res.Count, len(res.Readings))
	}
}

func TestGetReadingsAppliesLimit(t *testing.T) {
	store := &fakeReadingStore{history: testHistory(10)}
	uc := NewReadingsUseCase(store)

	res, err := uc.GetReadings(context.Background(), GetReadingsParams{
		Area:  "Anand Vihar",
		From:  time.Now().Add(-24 * time.Hour),
		To:    time.Now(),
		Limit: 3,
	})
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if res.Count != 3 || len(res.Readings) != 3 {
		t.Fatalf("count = %d readings = %d, want 3", res.Count, len(res.Readings))
	}
}
