package errors

import (
	"strings"
	"testing"
)

func TestValidateWindow(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		tolerance int64
		wantErr   bool
	}{
		{"zero", 0, 0, false},
		{"typical", 150, 10, false},
		{"negative target", -1, 0, true},
		{"negative tolerance", 10, -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWindow(tt.target, tt.tolerance)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWindow(%d, %d) error = %v, wantErr %v", tt.target, tt.tolerance, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateWindow() code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidateThreshold(t *testing.T) {
	if err := ValidateThreshold(0); err != nil {
		t.Errorf("ValidateThreshold(0) error = %v", err)
	}
	if err := ValidateThreshold(-5); err == nil {
		t.Error("ValidateThreshold(-5) expected error")
	}
}

func TestValidateStoreKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "snapshot:v1:abc123", false},
		{"empty", "", true},
		{"too long", strings.Repeat("k", 300), true},
		{"space", "snap shot", true},
		{"newline", "snap\nshot", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoreKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStoreKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "cache/index", false},
		{"absolute", "/var/cache/distindex", false},
		{"dots in name", "my..dir/x", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"traversal", "cache/../../etc", true},
		{"null byte", "cache\x00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
