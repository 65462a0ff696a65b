package test

import "testing"

// AssertTrue reports a test failure when a and b differ and returns whether
// they matched, so callers can short-circuit further assertions on failure.
func AssertTrue(t *testing.T, a, b any) bool {
	t.Helper()

	if a != b {
		t.Errorf(""+
			"Not equal: \n"+
			"Expected: %v\n"+
			"Actual: %v", a, b)
		return false
	}

	return true
}
