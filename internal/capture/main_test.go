package capture

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain fails the package if a cadence loop goroutine outlives its test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
