package shared_test

import (
	"testing"

	"roost/shared"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name  string
		total int
		limit int
		want  int
	}{
		{"zero total", 0, 10, 1},
		{"zero limit", 100, 0, 1},
		{"exact division", 100, 10, 10},
		{"rounds up", 101, 10, 11},
		{"single page", 5, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shared.CalculateTotalPage(tt.total, tt.limit); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		parts  []string
		want   string
	}{
		{"prefix only", "booking:get", nil, "booking:get"},
		{"single part", "booking:get", []string{"abc"}, "booking:get:abc"},
		{"multiple parts", "booking:mine", []string{"guest-1", "1", "10"}, "booking:mine:guest-1:1:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shared.BuildCacheKey(tt.prefix, tt.parts...); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
