package cli

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/alnah/go-fatsecret/internal/log"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	factory      *mockClientFactory
	api          *mockAPI
	stdout       *syncBuffer
	stderr       *syncBuffer
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv() (*Env, *testMocks) {
	api := &mockAPI{}
	mocks := &testMocks{
		configLoader: &mockConfigLoader{},
		factory:      &mockClientFactory{API: api},
		api:          api,
		stdout:       &syncBuffer{},
		stderr:       &syncBuffer{},
	}

	clock := time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)
	env := &Env{
		Stdout: mocks.stdout,
		Stderr: mocks.stderr,
		Getenv: func(string) string { return "" },
		Now: func() time.Time {
			clock = clock.Add(1500 * time.Millisecond)
			return clock
		},
		Logger:        log.Discard(),
		ConfigLoader:  mocks.configLoader,
		ClientFactory: mocks.factory,
	}
	return env, mocks
}

// staticEnv returns a getenv backed by a map.
func staticEnv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}
