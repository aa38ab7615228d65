//go:build js

// Command xr-web is the wasm entry point: it binds the XR layer to the page's navigator.xr and
// installs the enter buttons. Build with GOOS=js GOARCH=wasm.
package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-xr/engine"
	"github.com/Carmen-Shannon/oxy-xr/engine/platform/webxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/session"
	plugin "github.com/Carmen-Shannon/oxy-xr/engine/webxr"
	"github.com/Carmen-Shannon/oxy-xr/engine/xr"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true})

	p, err := webxr.NewPlatform()
	if err != nil {
		logger.WithError(err).Fatal("no browser window")
	}

	settings, err := xr.LoadSettingsFromEnv()
	if err != nil {
		logger.WithError(err).Warn("using default xr settings")
	}

	eng := engine.NewEngine(engine.WithLogger(logger))
	ctx := context.Background()
	go func() {
		if err := eng.Run(ctx); err != nil {
			logger.WithError(err).Error("engine stopped")
		}
	}()

	xrPlugin := plugin.NewPlugin(p,
		plugin.WithSettings(settings),
		plugin.WithLogger(logger),
		plugin.WithContext(ctx),
		plugin.WithResultHandler(func(r session.Result) {
			if r.Err != nil {
				logger.WithError(r.Err).WithField("mode", r.Mode).Warn("xr session unavailable")
				return
			}
			logger.WithField("mode", r.Mode).Info("xr session running")
		}),
	)
	if err := xrPlugin.Build(eng); err != nil {
		logger.WithError(err).Error("xr unavailable in this browser")
	}

	<-eng.Done()
}
