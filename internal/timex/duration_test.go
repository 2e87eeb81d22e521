package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalJSON_String(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"24h"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 24*time.Hour {
		t.Fatalf("want 24h, got %v", d.Duration)
	}
}

func TestUnmarshalJSON_Nanoseconds(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`1500000000`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Duration != 1500*time.Millisecond {
		t.Fatalf("want 1.5s, got %v", d.Duration)
	}
}

func TestUnmarshalJSON_Invalid(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatal("want error, got nil")
	}
	if err := json.Unmarshal([]byte(`true`), &d); err == nil {
		t.Fatal("want error, got nil")
	}
}
