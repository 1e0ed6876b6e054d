package giulia

import (
	"context"

	"github.com/jd3nn1s/giulia/giuliacan"
	"github.com/jd3nn1s/giulia/obd2"
	log "github.com/sirupsen/logrus"
)

type canOBD struct {
	c        CANOBD
	sendChan chan<- obd2.Value
}

// to allow testing
var canBusConnect = func(p string) (CANOBD, error) {
	c, err := giuliacan.Connect(p)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (bus *canOBD) Name() string {
	return "canbus"
}

func (bus *canOBD) Open() error {
	c, err := canBusConnect(canBusPortName)
	bus.c = c
	return err
}

func (bus *canOBD) Close() error {
	if bus.c == nil {
		return nil
	}
	return bus.c.Close()
}

func (bus *canOBD) Start(ctx context.Context) error {
	return bus.c.Start(ctx, giuliacan.Callbacks{
		Reading: func(v obd2.Value) {
			select {
			case bus.sendChan <- v:
			default:
			}
		},
	})
}

func runCANBus(ctx context.Context, sendChan chan<- obd2.Value) {
	err := retry(ctx, &canOBD{
		sendChan: sendChan,
	})
	if err != nil {
		log.Errorf("canbus done: %v", err)
	}
}
