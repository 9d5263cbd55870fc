package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTickInterval(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"250ms", 250 * time.Millisecond, true},
		{"2s", 2 * time.Second, true},
		{"15m", 15 * time.Minute, true},
		{"1h", time.Hour, true},
		{" 2S ", 2 * time.Second, true},
		{"", 0, true},
		{"0", 0, true},
		{"manual", 0, true},
		{"Manual", 0, true},
		{"-1s", 0, false},
		{"0s", 0, false},
		{"2d", 0, false},
		{"s", 0, false},
		{"ms", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseTickInterval(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
