package xr

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every settings variable name.
const EnvPrefix = "OXY_XR_"

// Settings configures session negotiation and tracking. Every field can be overridden from the
// environment with EnvPrefix, e.g. OXY_XR_VR_BUTTON.
type Settings struct {
	// VRSupported enables the "Enter VR" activation point when the platform supports VR.
	VRSupported bool `env:"VR_SUPPORTED" envDefault:"true"`
	// ARSupported enables the "Enter AR" activation point when the platform supports AR.
	ARSupported bool `env:"AR_SUPPORTED" envDefault:"true"`
	// InlineSupported starts an inline session at startup when the platform supports it.
	InlineSupported bool `env:"INLINE_SUPPORTED" envDefault:"false"`

	// VRButton is the element id of the button that enters VR.
	VRButton string `env:"VR_BUTTON" envDefault:"vr_button"`
	// ARButton is the element id of the button that enters AR.
	ARButton string `env:"AR_BUTTON" envDefault:"ar_button"`
	// Canvas is the selector of the canvas the session renders through.
	Canvas string `env:"CANVAS" envDefault:"canvas[data-raw-handle]"`

	// Origin is the tracking origin immersive sessions request.
	Origin Origin `env:"ORIGIN" envDefault:"room"`
	// HandTracking requests hand tracking as an optional session feature.
	HandTracking bool `env:"HAND_TRACKING" envDefault:"true"`
	// DepthNear is the near plane installed into the session's render state.
	DepthNear float64 `env:"DEPTH_NEAR" envDefault:"0.001"`
	// EvictAfter is the number of consecutive inactive updates after which an unclassified
	// controller entity is despawned. Zero keeps them for the whole session.
	EvictAfter int `env:"EVICT_AFTER" envDefault:"900"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		VRSupported:     true,
		ARSupported:     true,
		InlineSupported: false,
		VRButton:        "vr_button",
		ARButton:        "ar_button",
		Canvas:          "canvas[data-raw-handle]",
		Origin:          OriginRoom,
		HandTracking:    true,
		DepthNear:       0.001,
		EvictAfter:      900,
	}
}

// LoadSettingsFromEnv reads settings from the process environment, falling back to the
// defaults for anything unset.
//
// Returns:
//   - Settings: the parsed settings
//   - error: error if a variable is present but cannot be parsed
func LoadSettingsFromEnv() (Settings, error) {
	return parseSettings(env.Options{Prefix: EnvPrefix})
}

// LoadSettings reads settings from an explicit environment map instead of the process
// environment.
func LoadSettings(environment map[string]string) (Settings, error) {
	return parseSettings(env.Options{Prefix: EnvPrefix, Environment: environment})
}

func parseSettings(opts env.Options) (Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse xr settings: %w", err)
	}
	return s, nil
}

// Button returns the element id configured for a mode's activation button.
// Inline sessions have no button.
func (s Settings) Button(mode Mode) (string, bool) {
	switch mode {
	case ModeVR:
		return s.VRButton, true
	case ModeAR:
		return s.ARButton, true
	default:
		return "", false
	}
}

// Enabled reports whether the settings allow a mode at all.
func (s Settings) Enabled(mode Mode) bool {
	switch mode {
	case ModeVR:
		return s.VRSupported
	case ModeAR:
		return s.ARSupported
	default:
		return s.InlineSupported
	}
}
