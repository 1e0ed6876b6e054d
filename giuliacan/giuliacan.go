// Package giuliacan polls the Giulia's diagnostic modules over the CAN
// bus. It sends UDS ReadDataByIdentifier requests for a fixed set of DIDs
// and routes the single-frame responses through the obd2 decoders.
package giuliacan

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/brutella/can"
	"github.com/jd3nn1s/giulia/obd2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// 29-bit physical addressing to/from the engine module
	canIDRequest  uint32 = 0x18DA10F1
	canIDResponse uint32 = 0x18DAF110

	serviceReadDataByID      byte = 0x22
	serviceReadDataByIDReply byte = 0x62
	serviceNegativeReply     byte = 0x7F

	pollInterval = 100 * time.Millisecond
)

// DIDs requested from the car, in poll order.
var dids = []struct {
	did uint16
	pid obd2.PID
}{
	{0x1000, obd2.PIDEngineRPM},
	{0x1003, obd2.PIDExternalTemp},
	{0x1004, obd2.PIDBatteryVoltage},
	{0x1302, obd2.PIDEngineOilTemp},
	{0x1925, obd2.PIDGear},
	{0x18BE, obd2.PIDAtmosphericPressure},
	{0x195A, obd2.PIDBoostPressure},
	{0x19BD, obd2.PIDBatteryIBS},
}

type ReadingFn func(v obd2.Value)

type Callbacks struct {
	Reading ReadingFn
}

type CANBus interface {
	SubscribeFunc(can.HandlerFunc)
	ConnectAndPublish() error
	Disconnect() error
	Publish(can.Frame) error
}

type Connection struct {
	bus CANBus
	cb  Callbacks
}

// to allow testing
var newBus = func(portName string) (CANBus, error) {
	return can.NewBusForInterfaceWithName(portName)
}

func Connect(portName string) (*Connection, error) {
	bus, err := newBus(portName)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		bus: bus,
	}
	return c, nil
}

func (c *Connection) Start(ctx context.Context, cb Callbacks) error {
	c.cb = cb
	c.bus.SubscribeFunc(c.handleFrame)
	log.Info("CAN bus opened and subscribed")

	go c.poll(ctx)
	go func() {
		<-ctx.Done()
		log.Infof("stopping can bus: %v", ctx.Err())
		if err := c.bus.Disconnect(); err != nil {
			log.WithField("err", err).Warn("unable to disconnect canbus after context")
		}
	}()

	return c.bus.ConnectAndPublish()
}

func (c *Connection) Close() error {
	if c.bus == nil {
		return errors.New("can bus not connected")
	}
	return c.bus.Disconnect()
}

func (c *Connection) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		entry := dids[n%len(dids)]
		n++
		if err := c.bus.Publish(requestFrame(entry.did)); err != nil {
			log.WithField("did", entry.did).
				WithField("err", err).
				Warn("unable to publish request")
		}
	}
}

func requestFrame(did uint16) can.Frame {
	return can.Frame{
		ID:     canIDRequest,
		Length: 8,
		Data:   [8]uint8{0x03, serviceReadDataByID, byte(did >> 8), byte(did), 0, 0, 0, 0},
	}
}

func (c *Connection) handleFrame(frame can.Frame) {
	if frame.ID != canIDResponse {
		// other bus traffic
		return
	}
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("received diagnostic response")

	if frame.Length < 4 {
		log.WithField("length", frame.Length).Error("diagnostic response too short")
		return
	}
	data := obd2.Frame(frame.Data[:frame.Length])
	switch data[1] {
	case serviceNegativeReply:
		log.WithField("service", data[2]).Warn("negative response from module")
		return
	case serviceReadDataByIDReply:
	default:
		log.WithField("service", data[1]).Debug("ignoring unrequested service reply")
		return
	}

	did := binary.BigEndian.Uint16(data[2:4])
	pid, ok := pidForDID(did)
	if !ok {
		log.WithField("did", did).Error("unknown DID")
		return
	}

	v, err := obd2.Decode(pid, data)
	if err != nil {
		log.WithField("did", did).Error("unable to decode frame: ", err)
		return
	}

	if c.cb.Reading == nil {
		log.WithField("did", did).Debug("no callback registered")
		return
	}
	c.cb.Reading(v)
}

func pidForDID(did uint16) (obd2.PID, bool) {
	for _, entry := range dids {
		if entry.did == did {
			return entry.pid, true
		}
	}
	return 0, false
}
