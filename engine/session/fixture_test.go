package session

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-xr/engine"
)

const waitFor = 2 * time.Second

func newTestLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// runEngine starts eng's consumer loop for the duration of the test.
func runEngine(t *testing.T, eng engine.Engine) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = eng.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// onEngine runs fn on the engine's consumer goroutine and waits for it.
func onEngine(t *testing.T, eng engine.Engine, fn func(e engine.Engine)) {
	t.Helper()
	done := make(chan struct{})
	require.True(t, eng.Post(engine.Call{Fn: func(e engine.Engine) {
		defer close(done)
		fn(e)
	}}))
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("engine call timed out")
	}
}

// waitResult polls n until an activation outcome is available.
func waitResult(t *testing.T, n Negotiator) Result {
	t.Helper()
	var r Result
	require.Eventually(t, func() bool {
		var ok bool
		r, ok = n.Poll()
		return ok
	}, waitFor, 5*time.Millisecond)
	return r
}
