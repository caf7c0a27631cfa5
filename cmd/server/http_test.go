package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestBudget(t *testing.T) {
	tests := []struct {
		name  string
		write time.Duration
		want  time.Duration
	}{
		{"no write timeout", 0, 0},
		{"short write timeout", 6 * time.Second, 3 * time.Second},
		{"default write timeout", 10 * time.Minute, 10*time.Minute - responseMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestBudget(tt.write); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWithDeadline(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
	})

	start := time.Now()
	withDeadline(next, time.Minute).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !hasDeadline {
		t.Fatal("request context has no deadline")
	}
	if d := deadline.Sub(start); d <= 0 || d > time.Minute {
		t.Errorf("deadline %s after start, want within a minute", d)
	}

	hasDeadline = false
	withDeadline(next, 0).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if hasDeadline {
		t.Error("zero budget should leave the request context unbounded")
	}
}
