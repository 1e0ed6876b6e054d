// Package giulia ties decoded OBD-II readings from one of the transports
// into a single telemetry state, detects changes, and fans them out to
// forwarders.
package giulia

import (
	"context"

	"github.com/jd3nn1s/giulia/obd2"
	log "github.com/sirupsen/logrus"
)

const (
	canBusPortName = "can0"
	serialPortName = "/dev/ttyUSB0"

	channelBufferSize = 1
)

type Giulia struct {
	obdChan chan obd2.Value

	telemetry     Telemetry
	prevTelemetry Telemetry
	readings      *ReadingCache

	forwarders []Forwarder

	testMode   bool
	serialMode bool
}

func NewGiulia() *Giulia {
	return &Giulia{
		obdChan:  make(chan obd2.Value, channelBufferSize),
		readings: NewReadingCache(),
	}
}

func (jc *Giulia) AddForwarder(fwd Forwarder) {
	jc.forwarders = append(jc.forwarders, fwd)
}

func (jc *Giulia) SetTestMode(enabled bool) {
	jc.testMode = enabled
}

// SetSerialMode selects the ELM327 serial adapter instead of the CAN bus.
func (jc *Giulia) SetSerialMode(enabled bool) {
	jc.serialMode = enabled
}

func (jc *Giulia) Start(ctx context.Context) {
	if jc.testMode {
		jc.runTestMode(ctx)
		return
	}
	if jc.serialMode {
		go runELM(ctx, jc.obdChan)
		return
	}
	go runCANBus(ctx, jc.obdChan)
}

// CheckChannels blocks for the next decoded reading and reports whether
// it changed the current telemetry.
func (jc *Giulia) CheckChannels() bool {
	v := <-jc.obdChan
	jc.readings.Update(v)

	newTelemetry := jc.telemetry
	applyReading(&newTelemetry, v)
	if jc.telemetry != newTelemetry {
		jc.prevTelemetry = jc.telemetry
		jc.telemetry = newTelemetry
		return true
	}
	return false
}

// TelemetryUpdate pushes the current telemetry to all forwarders.
func (jc *Giulia) TelemetryUpdate() {
	for _, fwd := range jc.forwarders {
		if err := fwd.Forward(&jc.prevTelemetry, &jc.telemetry); err != nil {
			log.Error("unable to forward telemetry: ", err)
		}
	}
}

// Current returns a copy of the latest telemetry.
func (jc *Giulia) Current() Telemetry {
	return jc.telemetry
}

// Readings returns the last known value per PID in stable order.
func (jc *Giulia) Readings() []obd2.Value {
	return jc.readings.Readings()
}
