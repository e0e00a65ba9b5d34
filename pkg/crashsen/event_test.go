package crashsen

import "testing"

func TestSeverity_Values(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCrash, "crash"},
		{SeverityFatal, "fatal"},
	}

	for _, tt := range tests {
		if string(tt.severity) != tt.want {
			t.Errorf("Severity %v = %q, want %q", tt.severity, string(tt.severity), tt.want)
		}
	}
}

func TestErrorEvent_ZeroValueIsUsable(t *testing.T) {
	var event ErrorEvent

	if event.Mechanism != nil {
		t.Error("Zero-value event should have nil mechanism (manual capture)")
	}
	if event.SystemState != nil {
		t.Error("Zero-value event should have nil system state")
	}
	if event.Metadata != nil {
		t.Error("Zero-value event should have nil metadata")
	}
}
