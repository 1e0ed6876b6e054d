package giulia

import (
	"context"
	"time"

	"github.com/jd3nn1s/giulia/obd2"
)

// runTestMode generates synthetic readings so the dash and forwarders can
// be exercised without a car.
func (jc *Giulia) runTestMode(ctx context.Context) {
	send := func(v obd2.Value) {
		select {
		case jc.obdChan <- v:
		case <-ctx.Done():
		}
	}

	go func() {
		rpm := obd2.EngineRPM(0)
		down := false
		for {
			select {
			case <-time.Tick(time.Millisecond * 250):
			case <-ctx.Done():
				return
			}
			send(rpm)

			if down {
				rpm -= 100
			} else {
				rpm += 100
			}

			if rpm == 1800 {
				down = true
			} else if rpm == 0 {
				down = false
			}
		}
	}()

	go func() {
		oilTemp := obd2.EngineOilTemp(-10)
		boost := obd2.BoostPressure(1000)
		down := false
		for {
			select {
			case <-time.Tick(time.Second):
			case <-ctx.Done():
				return
			}
			send(oilTemp)
			send(boost)

			if down {
				oilTemp -= 5
				boost -= 50
			} else {
				oilTemp += 5
				boost += 50
			}

			if oilTemp == 120 {
				down = true
			} else if oilTemp == -10 {
				down = false
			}
		}
	}()

	go func() {
		gears := []obd2.Gear{
			{Position: obd2.GearReverse},
			{Position: obd2.GearNeutral},
			{Position: obd2.GearForward, Number: 1},
			{Position: obd2.GearForward, Number: 2},
			{Position: obd2.GearForward, Number: 3},
		}
		n := 0
		for {
			select {
			case <-time.Tick(time.Second * 2):
			case <-ctx.Done():
				return
			}
			send(gears[n%len(gears)])
			n++
		}
	}()

	go func() {
		for {
			select {
			case <-time.Tick(time.Second * 5):
			case <-ctx.Done():
				return
			}
			send(obd2.BatteryVoltage(12.6))
			send(obd2.BatteryIBS(87))
			send(obd2.AtmosphericPressure(1013))
			send(obd2.ExternalTemp(21))
		}
	}()
}
