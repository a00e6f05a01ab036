package services

import (
	"regexp"
	"testing"
	"time"
)

func TestTimestampIDGenerator(t *testing.T) {
	clock := newFixedClock()
	gen := NewTimestampIDGenerator(clock)

	id, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID() error = %v", err)
	}
	want := "1709294400.123456"
	if id != want {
		t.Errorf("NewID() = %q, want %q", id, want)
	}

	clock.Advance(time.Microsecond)
	next, _ := gen.NewID()
	if next == id {
		t.Error("ids one microsecond apart should differ")
	}
}

func TestNewIDGenerator(t *testing.T) {
	tests := []struct {
		strategy string
		pattern  string
		wantErr  bool
	}{
		{strategy: "", pattern: `^\d+\.\d{6}$`},
		{strategy: "timestamp", pattern: `^\d+\.\d{6}$`},
		{strategy: "UUID", pattern: `^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`},
		{strategy: "nanoid", pattern: `^[A-Za-z0-9_-]{21}$`},
		{strategy: "sequence", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.strategy, func(t *testing.T) {
			gen, err := NewIDGenerator(tt.strategy, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIDGenerator(%q) error = %v, wantErr %v", tt.strategy, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			id, err := gen.NewID()
			if err != nil {
				t.Fatalf("NewID() error = %v", err)
			}
			if !regexp.MustCompile(tt.pattern).MatchString(id) {
				t.Errorf("NewID() = %q does not match %s", id, tt.pattern)
			}
		})
	}
}
