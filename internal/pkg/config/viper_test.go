package config

import (
	"testing"
	"time"
)

const testYAML = `
api:
  base_url: http://localhost:8080
  timeout_seconds: 10
modules:
  verification:
    code_length: 6
    completion_delay_ms: 2000
    allowed_domains:
      - student.university.edu
      - campus.edu
instrument:
  log_mask_fields: password,otp_code
  trace_sample_ratio: 0.25
`

func TestViper_Getters(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	defer cfg.Close()

	// Act & Assert
	if got := cfg.GetString("api.base_url"); got != "http://localhost:8080" {
		t.Fatalf("GetString() = %q", got)
	}
	if got := cfg.GetInt("modules.verification.code_length"); got != 6 {
		t.Fatalf("GetInt() = %d, want 6", got)
	}
	if got := cfg.GetSecond("api.timeout_seconds"); got != 10*time.Second {
		t.Fatalf("GetSecond() = %v, want 10s", got)
	}
	if got := cfg.GetMillisecond("modules.verification.completion_delay_ms"); got != 2*time.Second {
		t.Fatalf("GetMillisecond() = %v, want 2s", got)
	}
	if got := cfg.GetFloat64("instrument.trace_sample_ratio"); got != 0.25 {
		t.Fatalf("GetFloat64() = %v, want 0.25", got)
	}
}

func TestViper_GetArrayBothShapes(t *testing.T) {
	// Arrange
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	if err != nil {
		t.Fatalf("NewViperFromBytes() error = %v", err)
	}
	defer cfg.Close()

	// Act & Assert: a YAML list.
	domains := cfg.GetArray("modules.verification.allowed_domains")
	if len(domains) != 2 || domains[0] != "student.university.edu" || domains[1] != "campus.edu" {
		t.Fatalf("GetArray(list) = %v", domains)
	}

	// A comma separated scalar.
	masks := cfg.GetArray("instrument.log_mask_fields")
	if len(masks) != 2 || masks[0] != "password" || masks[1] != "otp_code" {
		t.Fatalf("GetArray(csv) = %v", masks)
	}

	// Missing key yields an empty slice.
	if got := cfg.GetArray("nope"); len(got) != 0 {
		t.Fatalf("GetArray(missing) = %v, want empty", got)
	}
}

func TestViper_RequiresConfigType(t *testing.T) {
	// Arrange & Act
	_, err := NewViperFromBytes("  ", []byte("a: 1"))

	// Assert
	if err == nil {
		t.Fatal("NewViperFromBytes() error = nil, want error for blank type")
	}
}
