package giuliacan

import (
	"context"
	"sync"
	"testing"

	"github.com/brutella/can"
	"github.com/jd3nn1s/giulia/obd2"
	"github.com/stretchr/testify/assert"
)

type busStub struct {
	disconnected bool
	subscribed   bool
	stopChan     chan struct{}
	startedChan  chan struct{}
	publishChan  chan *can.Frame
}

func (bus *busStub) SubscribeFunc(can.HandlerFunc) {
	bus.subscribed = true
}

func (bus *busStub) ConnectAndPublish() error {
	bus.startedChan <- struct{}{}
	<-bus.stopChan
	return nil
}

func (bus *busStub) Disconnect() error {
	bus.disconnected = true
	bus.stopChan <- struct{}{}
	return nil
}

func (bus *busStub) Publish(f can.Frame) error {
	bus.publishChan <- &f
	return nil
}

func responseFrame(did uint16, a, b byte) can.Frame {
	return can.Frame{
		ID:     canIDResponse,
		Length: 6,
		Data:   [8]uint8{0x05, serviceReadDataByIDReply, byte(did >> 8), byte(did), a, b},
	}
}

func TestConnect(t *testing.T) {
	origNewBus := newBus
	bus := &busStub{
		stopChan: make(chan struct{}, 1),
	}
	newBus = func(string) (CANBus, error) {
		return bus, nil
	}
	defer func() {
		newBus = origNewBus
	}()

	c, err := Connect("fakeport")
	assert.NotNil(t, c)
	assert.NoError(t, err)
	assert.IsType(t, &busStub{}, c.bus)

	assert.NoError(t, c.Close())
	assert.True(t, bus.disconnected)
}

func TestStart(t *testing.T) {
	bus := &busStub{
		stopChan:    make(chan struct{}),
		startedChan: make(chan struct{}),
		publishChan: make(chan *can.Frame, 100),
	}

	c := &Connection{
		bus: bus,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cb := Callbacks{}
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		assert.NoError(t, c.Start(ctx, cb))
		wg.Done()
	}()
	<-bus.startedChan
	assert.True(t, bus.subscribed)
	assert.NotNil(t, c.cb)

	// poll loop publishes a ReadDataByIdentifier request
	f := <-bus.publishChan
	assert.Equal(t, canIDRequest, f.ID)
	assert.Equal(t, uint8(8), f.Length)
	assert.Equal(t, uint8(0x03), f.Data[0])
	assert.Equal(t, serviceReadDataByID, f.Data[1])

	cancel()
	wg.Wait()
}

func TestRequestFrame(t *testing.T) {
	f := requestFrame(0x195A)
	assert.Equal(t, canIDRequest, f.ID)
	assert.Equal(t, [8]uint8{0x03, 0x22, 0x19, 0x5A, 0, 0, 0, 0}, f.Data)
}

func TestHandleFrame(t *testing.T) {
	var readings []obd2.Value
	c := &Connection{
		cb: Callbacks{
			Reading: func(v obd2.Value) {
				readings = append(readings, v)
			},
		},
	}

	c.handleFrame(responseFrame(0x1000, 0x1A, 0xF4))
	assert.Equal(t, []obd2.Value{obd2.EngineRPM(1725)}, readings)

	c.handleFrame(responseFrame(0x1925, 0x10, 0x00))
	assert.Equal(t, obd2.Gear{Position: obd2.GearReverse}, readings[1])

	c.handleFrame(responseFrame(0x1004, 0x00, 125))
	assert.Equal(t, obd2.BatteryVoltage(12.5), readings[2])

	// frames from other bus traffic are ignored
	c.handleFrame(can.Frame{ID: 0x400, Length: 8})
	assert.Len(t, readings, 3)

	// negative response
	c.handleFrame(can.Frame{
		ID:     canIDResponse,
		Length: 4,
		Data:   [8]uint8{0x03, serviceNegativeReply, serviceReadDataByID, 0x31},
	})
	assert.Len(t, readings, 3)

	// unknown DID
	c.handleFrame(responseFrame(0xBEEF, 0x00, 0x00))
	assert.Len(t, readings, 3)

	// too short for the decoders
	c.handleFrame(can.Frame{
		ID:     canIDResponse,
		Length: 5,
		Data:   [8]uint8{0x04, serviceReadDataByIDReply, 0x10, 0x00, 0x1A},
	})
	assert.Len(t, readings, 3)
}

func TestPIDForDID(t *testing.T) {
	pid, ok := pidForDID(0x1302)
	assert.True(t, ok)
	assert.Equal(t, obd2.PIDEngineOilTemp, pid)

	_, ok = pidForDID(0xFFFF)
	assert.False(t, ok)
}
