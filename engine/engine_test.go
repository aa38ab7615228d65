package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func quietEngine(options ...EngineBuilderOption) (Engine, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewEngine(append([]EngineBuilderOption{WithLogger(logger)}, options...)...), hook
}

type ping struct{ N int }

var pingEvent = events.NewEventType[ping]()

func TestUpdateRunsStagesInOrder(t *testing.T) {
	e, _ := quietEngine()

	var order []string
	add := func(stage Stage, name string) {
		e.AddSystem(stage, name, func(ctx *UpdateContext) { order = append(order, name) })
	}
	add(StagePostUpdate, "render")
	add(StageUpdate, "logic")
	add(StageInput, "hands")
	add(StagePreInput, "controllers")
	add(StagePreInput, "cameras")

	require.NoError(t, e.Update(nil))
	assert.Equal(t, []string{"controllers", "cameras", "hands", "logic", "render"}, order)
	assert.Equal(t, uint64(1), e.Updates())
}

func TestUpdatePublishesFrameForOneUpdate(t *testing.T) {
	e, _ := quietEngine()

	var seen []*XRFrame
	e.AddSystem(StagePreInput, "reader", func(ctx *UpdateContext) {
		seen = append(seen, ctx.Frame)
		assert.Same(t, ctx.Frame, ctx.Engine.Frame())
	})

	frame := &XRFrame{Time: 16.6}
	require.NoError(t, e.Update(frame))
	assert.Nil(t, e.Frame(), "frame is retracted after the update")

	require.NoError(t, e.Update(nil))
	require.Len(t, seen, 2)
	assert.Same(t, frame, seen[0])
	assert.Nil(t, seen[1])
}

func TestUpdateProcessesEvents(t *testing.T) {
	e, _ := quietEngine()

	var got []int
	pingEvent.Subscribe(e.World(), func(_ donburi.World, p ping) { got = append(got, p.N) })
	e.AddSystem(StageUpdate, "publish", func(ctx *UpdateContext) {
		pingEvent.Publish(ctx.World, ping{N: int(ctx.Update)})
	})

	require.NoError(t, e.Update(nil))
	require.NoError(t, e.Update(nil))
	assert.Equal(t, []int{1, 2}, got)
}

func TestUpdatePanicQuitsEngine(t *testing.T) {
	e, hook := quietEngine()
	e.AddSystem(StageUpdate, "boom", func(ctx *UpdateContext) { panic("boom") })

	err := e.Update(&XRFrame{})
	assert.ErrorIs(t, err, ErrUpdatePanicked)
	assert.Nil(t, e.Frame())

	select {
	case <-e.Done():
	default:
		t.Fatal("engine did not quit")
	}
	assert.False(t, e.Post(Tick{}))

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "update recovered from panic" {
			found = true
			assert.Equal(t, "boom", entry.Data["system"])
		}
	}
	assert.True(t, found)
}

func TestRunDrivesFramesThroughQueue(t *testing.T) {
	e, _ := quietEngine(WithoutPacing())

	var frames []float64
	e.AddSystem(StagePreInput, "frames", func(ctx *UpdateContext) {
		if ctx.Frame != nil {
			frames = append(frames, ctx.Frame.Time)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	for _, ts := range []float64{1, 2, 3} {
		msg := NewDriveFrame(XRFrame{Time: ts})
		require.True(t, e.Post(msg))
		select {
		case <-msg.Done:
		case <-time.After(time.Second):
			t.Fatal("frame not driven")
		}
	}

	called := make(chan struct{})
	require.True(t, e.Post(Call{Fn: func(Engine) { close(called) }}))
	<-called

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, []float64{1, 2, 3}, frames)
	assert.Equal(t, uint64(3), e.Updates())
}

func TestPacingCanBeSuspended(t *testing.T) {
	e, _ := quietEngine(WithTickRate(500))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = e.Run(ctx) }()

	require.Eventually(t, func() bool { return e.Updates() > 2 }, time.Second, time.Millisecond)

	e.SuspendPacing()
	assert.False(t, e.Paced())
	time.Sleep(20 * time.Millisecond)
	settled := e.Updates()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, e.Updates(), "no ticks while suspended")

	e.ResumePacing()
	assert.True(t, e.Paced())
	require.Eventually(t, func() bool { return e.Updates() > settled }, time.Second, time.Millisecond)
}

func TestShutdownMessage(t *testing.T) {
	e, _ := quietEngine(WithoutPacing())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(context.Background()) }()

	require.True(t, e.Post(Shutdown{}))
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
	assert.ErrorIs(t, e.Run(context.Background()), ErrStopped)
}

func TestProfilerToggleWhileUpdating(t *testing.T) {
	e, _ := quietEngine(WithProfiling(true))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if err := e.Update(nil); err != nil {
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		if i%2 == 0 {
			e.DisableProfiler()
		} else {
			e.EnableProfiler()
		}
	}
	<-done
	assert.Equal(t, uint64(200), e.Updates())
}
