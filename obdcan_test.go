package giulia

import (
	"context"
	"sync"
	"testing"

	"github.com/jd3nn1s/giulia/obd2"
	"github.com/stretchr/testify/assert"
)

func TestRunCANOBD(t *testing.T) {
	obdChan := make(chan obd2.Value, channelBufferSize)

	origCanBusConnect := canBusConnect
	defer func() {
		canBusConnect = origCanBusConnect
	}()

	stub := createCANOBDStub()
	canBusConnect = func(p string) (CANOBD, error) {
		return stub, nil
	}

	bus := &canOBD{
		sendChan: obdChan,
	}

	// close before opening
	assert.NoError(t, bus.Close())
	assert.NoError(t, bus.Open())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		_ = bus.Start(ctx)
		wg.Done()
	}()
	<-stub.startChan

	stub.fnChan <- func() {
		stub.callbacks.Reading(obd2.EngineRPM(1725))
	}
	v := <-obdChan
	assert.Equal(t, obd2.EngineRPM(1725), v)

	stub.fnChan <- func() {
		stub.callbacks.Reading(obd2.BoostPressure(1400))
	}
	v = <-obdChan
	assert.Equal(t, obd2.BoostPressure(1400), v)

	cancel()
	wg.Wait()
}
