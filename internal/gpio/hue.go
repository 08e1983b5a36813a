package gpio

import (
	"fmt"

	"github.com/amimof/huego"
)

// HueBridge is the part of *huego.Bridge the light override needs.
type HueBridge interface {
	SetLightState(id int, state huego.State) (*huego.Response, error)
}

// HueLight routes the Light line to a Hue bulb and every other line to the base driver.
type HueLight struct {
	// Lines handles the sensor and buzzer.
	Lines

	bridge  HueBridge
	lightID int
	// on caches the last level successfully sent to the bulb.
	on bool
}

var _ Lines = (*HueLight)(nil)

// NewHueLight connects to a bridge by address and username.
func NewHueLight(base Lines, bridgeIP, username string, lightID int) *HueLight {
	return WithHueBridge(base, huego.New(bridgeIP, username), lightID)
}

// WithHueBridge wraps base with an already constructed bridge.
func WithHueBridge(base Lines, bridge HueBridge, lightID int) *HueLight {
	return &HueLight{
		Lines:   base,
		bridge:  bridge,
		lightID: lightID,
	}
}

// Init initialises the base driver and switches the bulb off.
func (h *HueLight) Init() error {
	if err := h.Lines.Init(); err != nil {
		return err
	}

	return h.SetLine(Light, false)
}

// SetLine sends light changes to the bulb.
func (h *HueLight) SetLine(line Line, high bool) error {
	if line != Light {
		return h.Lines.SetLine(line, high)
	}

	if _, err := h.bridge.SetLightState(h.lightID, huego.State{On: high}); err != nil {
		return fmt.Errorf("hue light %d: %w", h.lightID, err)
	}

	h.on = high

	return nil
}

// ReadLine reports the last level sent to the bulb for the light line.
func (h *HueLight) ReadLine(line Line) (bool, error) {
	if line != Light {
		return h.Lines.ReadLine(line)
	}

	return h.on, nil
}
