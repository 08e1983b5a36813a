package node

import (
	"context"
	"fmt"

	"github.com/oshokin/alarm-node/internal/alert"
	"github.com/oshokin/alarm-node/internal/config"
	"github.com/oshokin/alarm-node/internal/controller"
	"github.com/oshokin/alarm-node/internal/gpio"
	repository "github.com/oshokin/alarm-node/internal/repository/state"
	"github.com/oshokin/alarm-node/internal/sink"
	"github.com/oshokin/alarm-node/internal/transport/mqtt"
)

// driverPeriph selects real pins; anything else is the in-memory driver.
const driverPeriph = "periph"

// components are the wired parts of a node.
type components struct {
	// machine is the state machine and command router.
	machine *controller.Machine
	// repo persists commanded values.
	repo *repository.FileRepository
	// mqtt is nil when no broker is configured.
	mqtt *mqtt.Client
}

func newComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	messages, err := alert.NewMessages(cfg.Alert.Locale)
	if err != nil {
		return nil, fmt.Errorf("load alert messages: %w", err)
	}

	c := &components{
		repo: repository.NewFileRepository(cfg.Node.StateFile),
	}

	var (
		params sink.Fanout
		alerts = alert.Fanout{alert.Log{}}
	)

	// The announcer needs the machine, which needs the client; it is set
	// below, before Run connects.
	var announcer *mqtt.Announcer

	if cfg.MQTT.Enabled() {
		c.mqtt = mqtt.NewClient(ctx, &cfg.MQTT, func(client *mqtt.Client) {
			announcer.OnConnect(client)
		})

		published := mqtt.NewSink(c.mqtt)
		coalescing := sink.NewCoalescing(published, cfg.MQTT.CoalesceTTL)
		published.OnDeliveryFailure(coalescing.Forget)

		params = append(params, coalescing)
		alerts = append(alerts, mqtt.NewAlerts(c.mqtt))
	}

	c.machine = controller.New(
		newLines(cfg),
		params,
		alerts,
		controller.WithBlinkHalfPeriod(cfg.Node.BlinkHalfPeriod),
		controller.WithAlertMessage(messages.DoorOpenedWhileArmed()),
		controller.WithStore(c.repo),
	)

	announcer = mqtt.NewAnnouncer(cfg.Node.Name, c.machine)

	return c, nil
}

// newLines picks the GPIO driver and optionally routes the light to a Hue bulb.
//
//nolint:ireturn // The driver is chosen at runtime.
func newLines(cfg *config.Config) gpio.Lines {
	var lines gpio.Lines

	switch cfg.GPIO.Driver {
	case driverPeriph:
		lines = gpio.NewPeriph(gpio.PinNames{
			Light:  cfg.GPIO.LightPin,
			Sensor: cfg.GPIO.SensorPin,
			Buzzer: cfg.GPIO.BuzzerPin,
		})
	default:
		lines = gpio.NewMemory()
	}

	if cfg.Hue.Enabled() {
		lines = gpio.NewHueLight(lines, cfg.Hue.BridgeIP, cfg.Hue.Username, cfg.Hue.LightID)
	}

	return lines
}
