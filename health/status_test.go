package health

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusUnknown, "unknown"},
		{StatusOperational, "operational"},
		{StatusConfigured, "configured"},
		{StatusError, "error"},
		{StatusNotConfigured, "not-configured"},
		{StatusChecking, "checking"},
		{Status(99), "unknown"},
		{Status(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusUnknown, StatusOperational, StatusConfigured, StatusError, StatusNotConfigured, StatusChecking} {
		got, err := ParseStatus(s.String())
		if err != nil || got != s {
			t.Errorf("ParseStatus(%q) = (%v, %v), want %v", s.String(), got, err, s)
		}
	}

	if _, err := ParseStatus("healthy"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseStatus(healthy) error = %v, want ErrInvalidStatus", err)
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Status{"stripe": StatusNotConfigured})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"stripe":"not-configured"}` {
		t.Errorf("Marshal = %s", data)
	}

	var decoded map[string]Status
	if err := json.Unmarshal([]byte(`{"github":"operational"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["github"] != StatusOperational {
		t.Errorf("decoded = %v, want operational", decoded["github"])
	}

	if err := json.Unmarshal([]byte(`{"github":"green"}`), &decoded); err == nil {
		t.Error("expected error for unknown status name")
	}
}

func TestHealthResult_IsError(t *testing.T) {
	if !(HealthResult{Status: StatusError}).IsError() {
		t.Error("StatusError result should report IsError")
	}
	if (HealthResult{Status: StatusOperational}).IsError() {
		t.Error("StatusOperational result should not report IsError")
	}
}
