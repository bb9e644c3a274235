package monitoring

import (
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("test message")
	if !called {
		t.Error("custom logger was not called")
	}

	// nil installs a no-op, not a nil func.
	called = false
	SetLogger(nil)
	Logf("test message")
	if called {
		t.Error("no-op logger must not reach the previous logger")
	}
	if Logf == nil {
		t.Error("Logf must never be nil")
	}
}

func TestDebugfRespectsVerbose(t *testing.T) {
	originalLogf, originalVerbose := Logf, Verbose
	defer func() { Logf, Verbose = originalLogf, originalVerbose }()

	calls := 0
	SetLogger(func(format string, v ...interface{}) { calls++ })

	Verbose = false
	Debugf("hidden")
	if calls != 0 {
		t.Fatalf("Debugf logged %d times with Verbose off", calls)
	}

	Verbose = true
	Debugf("shown")
	if calls != 1 {
		t.Fatalf("Debugf logged %d times with Verbose on, want 1", calls)
	}
}
