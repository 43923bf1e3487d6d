package models

import (
	"testing"
	"time"
)

func validCompetitor() *Competitor {
	return &Competitor{
		Name:        "Green Acres Phase II",
		City:        "Pune",
		Area:        "Baner",
		Status:      StatusUnderConstruction,
		Confidence:  80,
		CollectedAt: time.Now().Add(-time.Hour),
	}
}

func TestCompetitor_Validate(t *testing.T) {
	now := time.Now()

	if err := validCompetitor().Validate(now); err != nil {
		t.Errorf("expected valid competitor, got %v", err)
	}

	c := validCompetitor()
	c.Name = ""
	if err := c.Validate(now); err == nil {
		t.Error("expected error for missing name")
	}

	c = validCompetitor()
	c.Area = ""
	if err := c.Validate(now); err == nil {
		t.Error("expected error for missing area")
	}

	c = validCompetitor()
	c.Status = "haunted"
	if err := c.Validate(now); err == nil {
		t.Error("expected error for unknown status")
	}

	c = validCompetitor()
	c.Confidence = 101
	if err := c.Validate(now); err == nil {
		t.Error("expected error for confidence above 100")
	}

	c = validCompetitor()
	c.Confidence = -1
	if err := c.Validate(now); err == nil {
		t.Error("expected error for negative confidence")
	}

	c = validCompetitor()
	c.CollectedAt = now.Add(time.Hour)
	if err := c.Validate(now); err == nil {
		t.Error("expected error for future collected_at")
	}
}

func TestCompetitor_TotalUnits(t *testing.T) {
	c := validCompetitor()
	if c.TotalUnits() != 0 {
		t.Errorf("expected 0 units without a unit mix, got %d", c.TotalUnits())
	}

	c.UnitMix = []UnitMixEntry{
		{UnitType: "2_bhk", TotalUnits: 60},
		{UnitType: "3_bhk", TotalUnits: 40},
	}
	if c.TotalUnits() != 100 {
		t.Errorf("expected 100 units, got %d", c.TotalUnits())
	}
}

func TestCachedAnalysis_Expired(t *testing.T) {
	expires := time.Date(2026, 6, 16, 9, 0, 0, 0, time.UTC)
	entry := &CachedAnalysis{ExpiresAt: expires}

	if entry.Expired(expires.Add(-time.Second)) {
		t.Error("entry should not be expired before ExpiresAt")
	}
	if !entry.Expired(expires) {
		t.Error("entry should be expired exactly at ExpiresAt")
	}
	if !entry.Expired(expires.Add(time.Second)) {
		t.Error("entry should be expired after ExpiresAt")
	}
}

func TestProject_HasLocality(t *testing.T) {
	p := &Project{City: "Pune", Area: "Baner"}
	if !p.HasLocality() {
		t.Error("expected locality to be resolved")
	}

	if (&Project{City: "Pune"}).HasLocality() {
		t.Error("expected missing area to fail")
	}
	if (&Project{Area: "Baner"}).HasLocality() {
		t.Error("expected missing city to fail")
	}
}
