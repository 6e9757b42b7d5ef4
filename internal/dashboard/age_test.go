package dashboard

import (
	"testing"
	"time"

	"github.com/drivedash/drivedash/internal/models"
)

var refNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestClassifyAge(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		label   string
		bucket  Freshness
	}{
		{"just now", 0, "0m", Fresh},
		{"59 minutes", 59*time.Minute + 59*time.Second, "59m", Fresh},
		{"one hour", time.Hour, "1h", Fresh},
		{"almost a day", 23*time.Hour + 59*time.Minute, "23h", Fresh},
		{"one day", 24 * time.Hour, "1d", Recent},
		{"71 hours", 71 * time.Hour, "2d", Recent},
		{"three days", 72 * time.Hour, "3d", Old},
		{"six days", 6*day + 23*time.Hour, "6d", Old},
		{"one week", 7 * day, "1w", Old},
		{"29 days", 29 * day, "4w", Old},
		{"30 days", 30 * day, "1mo", Old},
		{"65 days", 65 * day, "2mo", Old},
		{"five minutes ahead", -5 * time.Minute, "-5m", Fresh},
		{"ninety seconds ahead", -90 * time.Second, "-1m", Fresh},
		{"two hours ahead", -2 * time.Hour, "-120m", Fresh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyAge(refNow.Add(-tt.elapsed), refNow)
			if got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if got.Bucket != tt.bucket {
				t.Errorf("bucket = %q, want %q", got.Bucket, tt.bucket)
			}
		})
	}
}

func TestClassifyAge_BucketBoundaries(t *testing.T) {
	for elapsed := time.Duration(0); elapsed <= 5*day; elapsed += 17 * time.Minute {
		got := ClassifyAge(refNow.Add(-elapsed), refNow).Bucket
		var want Freshness
		switch {
		case elapsed < 24*time.Hour:
			want = Fresh
		case elapsed < 72*time.Hour:
			want = Recent
		default:
			want = Old
		}
		if got != want {
			t.Fatalf("elapsed %v: bucket = %q, want %q", elapsed, got, want)
		}
	}
}

func TestAgeOf(t *testing.T) {
	l := models.Listing{Date: refNow.Add(-3 * time.Hour).Format(time.RFC3339)}
	if got := AgeOf(l, refNow); got.Label != "3h" || got.Bucket != Fresh {
		t.Errorf("AgeOf() = %+v, want 3h/fresh", got)
	}

	bad := models.Listing{Date: "yesterday-ish"}
	got := AgeOf(bad, refNow)
	if got.Label != UnknownAgeLabel || got.Bucket != Old {
		t.Errorf("AgeOf(unparseable) = %+v, want %q/old", got, UnknownAgeLabel)
	}
}
