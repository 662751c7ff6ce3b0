package testutil

import "testing"

// Given, When and Then run the steps of one scenario as named subtests.
// Steps share state through the enclosing test, so once a step fails the
// remaining steps are skipped instead of failing on a half-built fixture.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	step(t, "Then "+desc, fn)
}

func step(t *testing.T, name string, fn func(t *testing.T)) {
	t.Helper()
	if t.Failed() {
		t.Logf("skipping %q after an earlier failed step", name)
		return
	}
	t.Run(name, fn)
}
