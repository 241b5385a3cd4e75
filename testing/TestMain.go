// Package testing switches binaries into test mode when imported by a test.
// Importing it for side effects keeps cmd/ mains from dialing Postgres, Redis
// or Gotenberg.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

// testDefaults fill what LoadConfig requires without touching real services.
var testDefaults = map[string]string{
	"SERVICEDESK_TEST_MODE": "1",
	"CSRF_SECRET":           "test-csrf-secret",
	"GOTENBERG_URL":         "http://127.0.0.1:0",
}

func ensureTestMode() {
	once.Do(func() {
		for key, value := range testDefaults {
			if os.Getenv(key) == "" {
				_ = os.Setenv(key, value)
			}
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be delegated to by packages that declare their own.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
