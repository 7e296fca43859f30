package model

import (
	"testing"
	"time"
)

func TestParseFeature(t *testing.T) {
	tests := []struct {
		in     string
		want   Feature
		wantOK bool
	}{
		{"enhance", FeatureEnhance, true},
		{"compress", FeatureCompress, true},
		{"share", FeatureShare, true},
		{"pdf", FeaturePDF, true},
		{"", "", false},
		{"ENHANCE", "", false},
		{"video", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFeature(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseFeature(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestFeatureLabels(t *testing.T) {
	// The labels feed activity strings like "enabled photo enhancement".
	tests := map[Feature]string{
		FeatureEnhance:  "photo enhancement",
		FeatureCompress: "photo compression",
		FeatureShare:    "link generation",
		FeaturePDF:      "PDF editor",
	}
	for f, want := range tests {
		if got := f.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", f, got, want)
		}
	}
}

func TestStatusToggle(t *testing.T) {
	if StatusActive.Toggle() != StatusInactive {
		t.Error("active should toggle to inactive")
	}
	if StatusInactive.Toggle() != StatusActive {
		t.Error("inactive should toggle to active")
	}
}

func TestFeatureFlagsSetAndEnabled(t *testing.T) {
	var ff FeatureFlags
	for _, f := range Features() {
		if ff.Enabled(f) {
			t.Errorf("zero-value flags should report %s disabled", f)
		}
		ff.Set(f, true)
		if !ff.Enabled(f) {
			t.Errorf("Set(%s, true) not reflected by Enabled", f)
		}
	}
	if ff.Enabled("bogus") {
		t.Error("unknown features must report disabled")
	}
}

func TestUsageStatsRecordAndCount(t *testing.T) {
	var s UsageStats
	s.Record(FeatureShare)
	s.Record(FeatureShare)
	s.Record(FeaturePDF)

	if s.Count(FeatureShare) != 2 {
		t.Errorf("Count(share) = %d, want 2", s.Count(FeatureShare))
	}
	if s.Count(FeaturePDF) != 1 {
		t.Errorf("Count(pdf) = %d, want 1", s.Count(FeaturePDF))
	}
	if s.Count(FeatureEnhance) != 0 {
		t.Errorf("Count(enhance) = %d, want 0", s.Count(FeatureEnhance))
	}
}

func TestDisplayName(t *testing.T) {
	u := User{Name: "Bob", Email: "bob@example.com"}
	if u.DisplayName() != "Bob" {
		t.Errorf("DisplayName() = %q, want Bob", u.DisplayName())
	}
	u.Name = ""
	if u.DisplayName() != "bob@example.com" {
		t.Errorf("DisplayName() = %q, want the email fallback", u.DisplayName())
	}
}

func TestResetTokenExpiredAt(t *testing.T) {
	expiry := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	tok := ResetToken{Expiry: expiry}

	if tok.ExpiredAt(expiry.Add(-time.Second)) {
		t.Error("token reported expired before its expiry")
	}
	if tok.ExpiredAt(expiry) {
		t.Error("token expires strictly after the expiry instant")
	}
	if !tok.ExpiredAt(expiry.Add(time.Second)) {
		t.Error("token not reported expired past its expiry")
	}
}
