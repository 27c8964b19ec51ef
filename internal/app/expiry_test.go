package app

import (
	"testing"
	"time"

	"github.com/letspay/request-service/internal/domain"
)

func TestShouldExpire(t *testing.T) {
	cutoff := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{
			name:      "well past cutoff expires",
			createdAt: cutoff.Add(-6 * time.Hour),
			want:      true,
		},
		{
			name:      "exactly at cutoff expires",
			createdAt: cutoff,
			want:      true,
		},
		{
			name:      "same second as cutoff expires despite later sub-second component",
			createdAt: cutoff.Add(999 * time.Millisecond),
			want:      true,
		},
		{
			name:      "one second after cutoff is kept",
			createdAt: cutoff.Add(time.Second),
			want:      false,
		},
		{
			name:      "one hour after cutoff is kept",
			createdAt: cutoff.Add(time.Hour),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldExpire(tt.createdAt, cutoff)
			if got != tt.want {
				t.Fatalf("expected expire=%t, got %t", tt.want, got)
			}
		})
	}
}

func TestReconcileLimit(t *testing.T) {
	tests := []struct {
		name       string
		lookup     domain.LimitLookup
		amount     int64
		want       int64
		wantStaged bool
	}{
		{
			name:       "present limit is restored by the amount",
			lookup:     domain.LimitLookup{Found: true, AvailableLimit: 500},
			amount:     100,
			want:       600,
			wantStaged: true,
		},
		{
			name:       "missing limit stages nothing",
			lookup:     domain.LimitLookup{},
			amount:     100,
			wantStaged: false,
		},
		{
			name:       "negative amount flows through without clamping",
			lookup:     domain.LimitLookup{Found: true, AvailableLimit: 50},
			amount:     -200,
			want:       -150,
			wantStaged: true,
		},
		{
			name:       "zero existing limit",
			lookup:     domain.LimitLookup{Found: true, AvailableLimit: 0},
			amount:     10,
			want:       10,
			wantStaged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, staged := reconcileLimit(tt.lookup, tt.amount)
			if staged != tt.wantStaged {
				t.Fatalf("expected staged=%t, got %t", tt.wantStaged, staged)
			}
			if staged && got != tt.want {
				t.Fatalf("expected restored limit=%d, got %d", tt.want, got)
			}
		})
	}
}
