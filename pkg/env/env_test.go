package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("HOSTELHUB_TEST_FORMAT", "  console ")
	if got := Get("HOSTELHUB_TEST_FORMAT", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("HOSTELHUB_TEST_FORMAT", "   ")
	if got := Get("HOSTELHUB_TEST_FORMAT", "json"); got != "json" {
		t.Fatalf("expected fallback for blank value, got %q", got)
	}
}

func TestFirstSkipsBlank(t *testing.T) {
	t.Setenv("HOSTELHUB_TEST_A", "")
	t.Setenv("HOSTELHUB_TEST_B", "worker-2")
	if got, ok := First("HOSTELHUB_TEST_A", "HOSTELHUB_TEST_B"); !ok || got != "worker-2" {
		t.Fatalf("expected worker-2, got %q %v", got, ok)
	}
	if _, ok := First("HOSTELHUB_TEST_UNSET"); ok {
		t.Fatal("expected no value")
	}
}
