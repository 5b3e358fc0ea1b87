package models

import "testing"

func TestReadTimeMinutes(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		want      int
	}{
		{"zero words", 0, 0},
		{"negative word count", -10, 0},
		{"very short article", 40, 1},
		{"just under one minute", 112, 1},
		{"one minute", 225, 1},
		{"about two minutes", 450, 2},
		{"long read", 2250, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Article{WordCount: tt.wordCount}
			if got := a.ReadTimeMinutes(); got != tt.want {
				t.Errorf("ReadTimeMinutes() with %d words = %d, want %d", tt.wordCount, got, tt.want)
			}
		})
	}
}
