package util

import "testing"

func TestClamp(t *testing.T) {
    cases := []struct {
        v, lo, hi, want float64
    }{
        {5, 0, 10, 5},
        {-1, 0, 10, 0},
        {11, 0, 10, 10},
    }
    for _, c := range cases {
        if got := Clamp(c.v, c.lo, c.hi); got != c.want {
            t.Fatalf("Clamp(%v,%v,%v) = %v, want %v", c.v, c.lo, c.hi, got, c.want)
        }
    }
}

func TestClampInt(t *testing.T) {
    if got := ClampInt(150, 0, 100); got != 100 {
        t.Fatalf("expected 100, got %d", got)
    }
    if got := ClampInt(-5, 0, 100); got != 0 {
        t.Fatalf("expected 0, got %d", got)
    }
}

func TestRound2(t *testing.T) {
    if got := Round2(3.14159); got != 3.14 {
        t.Fatalf("expected 3.14, got %v", got)
    }
}
