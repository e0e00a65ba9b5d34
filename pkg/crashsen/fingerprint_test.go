package crashsen

import (
	"testing"
	"time"
)

const sampleTrace = `goroutine 1 [running]:
main.doWork(0xc000102030)
	/srv/app/main.go:42 +0x1a4
main.run()
	/srv/app/main.go:20 +0x64
main.main()
	/srv/app/main.go:10 +0x1c`

func TestFingerprint_StableAcrossVariableData(t *testing.T) {
	base := ErrorEvent{
		ErrorType: "timeout",
		Component: "fetcher",
		Mechanism: &Mechanism{Type: MechanismUncaught},
	}

	a := base
	a.EventID = "11111111-1111-1111-1111-111111111111"
	a.Timestamp = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.Message = "deadline exceeded after 30s"

	b := base
	b.EventID = "22222222-2222-2222-2222-222222222222"
	b.Timestamp = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	b.Message = "deadline exceeded after 31s"

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Fingerprint should ignore event ID, timestamp, and message")
	}
}

func TestFingerprint_DiffersByErrorType(t *testing.T) {
	a := ErrorEvent{ErrorType: "timeout", Component: "fetcher"}
	b := ErrorEvent{ErrorType: "oom", Component: "fetcher"}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Fingerprint should differ for different error types")
	}
}

func TestFingerprint_DiffersByMechanism(t *testing.T) {
	a := ErrorEvent{ErrorType: "panic", Mechanism: &Mechanism{Type: MechanismPanic}}
	b := ErrorEvent{ErrorType: "panic", Mechanism: &Mechanism{Type: MechanismUncaught}}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Fingerprint should differ for different mechanisms")
	}
}

func TestFingerprint_IgnoresAddressesAndLineNumbers(t *testing.T) {
	a := ErrorEvent{ErrorType: "panic", StackTrace: sampleTrace}

	variant := `goroutine 99 [running]:
main.doWork(0xc0ffee0000)
	/srv/app/main.go:57 +0x2b8
main.run()
	/srv/app/main.go:21 +0x70
main.main()
	/srv/app/main.go:11 +0x20`
	b := ErrorEvent{ErrorType: "panic", StackTrace: variant}

	if Fingerprint(a) != Fingerprint(b) {
		t.Error("Fingerprint should ignore goroutine IDs, addresses, and line numbers")
	}
}

func TestFingerprint_DiffersByStackFrames(t *testing.T) {
	a := ErrorEvent{ErrorType: "panic", StackTrace: sampleTrace}

	other := `goroutine 1 [running]:
main.otherPath(0xc000102030)
	/srv/app/other.go:12 +0x1a4
main.main()
	/srv/app/main.go:10 +0x1c`
	b := ErrorEvent{ErrorType: "panic", StackTrace: other}

	if Fingerprint(a) == Fingerprint(b) {
		t.Error("Fingerprint should differ for different stack frames")
	}
}

func TestFingerprint_EmptyEventStillHashes(t *testing.T) {
	fp := Fingerprint(ErrorEvent{})
	if len(fp) != 32 {
		t.Errorf("Fingerprint length = %d, want 32 hex chars", len(fp))
	}
}

func TestNormalizeStackTrace_ExtractsFunctionNames(t *testing.T) {
	frames := normalizeStackTrace(sampleTrace)

	want := []string{"main.doWork", "main.run", "main.main"}
	if len(frames) != len(want) {
		t.Fatalf("Got %d frames %v, want %d", len(frames), frames, len(want))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frames[%d] = %q, want %q", i, frames[i], want[i])
		}
	}
}

func TestNormalizeStackTrace_CapsAtThreeFrames(t *testing.T) {
	deep := `goroutine 1 [running]:
pkg.a()
	/srv/x.go:1 +0x1
pkg.b()
	/srv/x.go:2 +0x2
pkg.c()
	/srv/x.go:3 +0x3
pkg.d()
	/srv/x.go:4 +0x4`

	frames := normalizeStackTrace(deep)
	if len(frames) != 3 {
		t.Errorf("Got %d frames, want 3", len(frames))
	}
}

func TestNormalizeStackTrace_EmptyInput(t *testing.T) {
	if frames := normalizeStackTrace(""); frames != nil {
		t.Errorf("Expected nil frames for empty trace, got %v", frames)
	}
}
