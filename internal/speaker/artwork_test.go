package speaker

import (
	"testing"
	"time"
)

func TestExpandImageURL(t *testing.T) {
	base := "http://mopidy.local:6680"
	day1 := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	day1Later := time.Date(2025, 3, 14, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 15, 0, 1, 0, 0, time.UTC)

	tests := []struct {
		name string
		ref  string
		now  time.Time
		want string
	}{
		{
			name: "relative reference is absolutized",
			ref:  "/local/art/cover.jpg",
			now:  day1,
			want: "http://mopidy.local:6680/local/art/cover.jpg?mopt=20250314",
		},
		{
			name: "absolute reference kept as is",
			ref:  "https://cdn.example/cover.jpg",
			now:  day1,
			want: "https://cdn.example/cover.jpg?mopt=20250314",
		},
		{
			name: "existing query string gets ampersand",
			ref:  "/art?id=42",
			now:  day1,
			want: "http://mopidy.local:6680/art?id=42&mopt=20250314",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandImageURL(base, tt.ref, tt.now); got != tt.want {
				t.Errorf("expandImageURL() = %q, want %q", got, tt.want)
			}
		})
	}

	// Stable within one day, fresh across days.
	a := expandImageURL(base, "/art.jpg", day1)
	b := expandImageURL(base, "/art.jpg", day1Later)
	c := expandImageURL(base, "/art.jpg", day2)
	if a != b {
		t.Errorf("same-day URLs differ: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("cross-day URLs identical: %q", a)
	}
}
