// Command xr-emulator runs the XR layer against a simulated headset on the desktop. The eyes are
// rendered into the simulated compositor framebuffer and mirrored to a GLFW window; keyboard and
// mouse drive the head and controllers. Press V to enter VR and X to leave it.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/emulator"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/sim"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-xr/engine/webxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(logger); err != nil {
		logger.WithError(err).Error("xr emulator failed")
		os.Exit(1)
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	settings, err := xr.LoadSettingsFromEnv()
	if err != nil {
		return err
	}
	settings.InlineSupported = settings.InlineSupported || cfg.Inline
	if cfg.Hands {
		settings.HandTracking = true
	}

	// The window must be created on the main thread before the surface is.
	win, err := window.NewWindow(
		window.WithTitle("Oxy XR Emulator"),
		window.WithSize(cfg.Width, cfg.Height),
		window.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	device, err := gpu.NewDevice(
		gpu.WithSurfaceDescriptor(win.SurfaceDescriptor()),
		gpu.WithVSync(cfg.VSync),
	)
	if err != nil {
		return err
	}
	defer device.Release()
	device.ConfigureMirror(win.Width(), win.Height())
	win.SetResizeCallback(device.ConfigureMirror)

	grid, err := gpu.NewGrid(device, gpu.WithGridLogger(logger))
	if err != nil {
		return err
	}
	defer grid.Release()

	r := renderer.NewRenderer(
		gpu.NewEyeBackend(device,
			gpu.WithDrawFunc(grid.Draw),
			gpu.WithClearColor(0.05, 0.06, 0.08, 1),
			gpu.WithBackendLogger(logger),
		),
		renderer.WithLogger(logger),
	)

	rt := sim.NewRuntime(sim.WithSupportedModes(xr.ModeInline, xr.ModeVR))

	emuOpts := []emulator.EmulatorBuilderOption{
		emulator.WithLogger(logger),
		emulator.WithMoveSpeed(cfg.MoveSpeed),
		emulator.WithEnterButton(settings.VRButton),
	}
	if cfg.Hands {
		emuOpts = append(emuOpts, emulator.WithTrackedHands())
	}
	emu := emulator.NewEmulator(rt, emuOpts...)
	win.SetInputHandler(emu)

	eng := engine.NewEngine(
		engine.WithLogger(logger),
		engine.WithProfiling(cfg.Profile),
		engine.WithTickRate(cfg.FrameRate),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plugin := webxr.NewPlugin(rt,
		webxr.WithSettings(settings),
		webxr.WithLogger(logger),
		webxr.WithContext(ctx),
		webxr.WithRenderer(r),
		webxr.WithFramebufferViewFactory(gpu.NewFramebufferViewFactory(device)),
	)

	done := make(chan error, 1)
	go func() {
		done <- eng.Run(ctx)
	}()

	if err := plugin.Build(eng); err != nil {
		cancel()
		<-done
		return err
	}

	logger.Info("V enters VR, X ends the session, 0/1/2 select head/left/right, Esc quits")

	interval := cfg.frameInterval()
	last := time.Now()
	win.SetUpdateCallback(func() {
		now := time.Now()
		if now.Sub(last) < interval {
			return
		}
		emu.Step(now.Sub(last))
		last = now

		select {
		case <-eng.Done():
			_ = win.Close()
		default:
		}
	})
	win.ProcessMessages()

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
