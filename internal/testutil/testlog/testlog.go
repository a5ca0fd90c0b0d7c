// Package testlog routes codec debug output through the test logging profile.
package testlog

import (
	"testing"

	"github.com/danmuck/drivelink/internal/logging"
)

// Start configures test logging once per process and brackets t with
// start and finish lines so decode warnings can be matched to a test.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logging.Debugf("testlog.Start test=%s", t.Name())
	t.Cleanup(func() {
		logging.Debugf("testlog.Done test=%s failed=%t", t.Name(), t.Failed())
	})
}
