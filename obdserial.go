package giulia

import (
	"context"

	"github.com/jd3nn1s/giulia/elm327"
	"github.com/jd3nn1s/giulia/obd2"
	log "github.com/sirupsen/logrus"
)

type serialOBD struct {
	c        ELM327
	sendChan chan<- obd2.Value
}

// to allow testing
var elmConnect = func(p string) (ELM327, error) {
	c, err := elm327.Connect(p)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *serialOBD) Name() string {
	return "elm327"
}

func (s *serialOBD) Open() error {
	c, err := elmConnect(serialPortName)
	s.c = c
	return err
}

func (s *serialOBD) Close() error {
	if s.c == nil {
		return nil
	}
	return s.c.Close()
}

func (s *serialOBD) Start(ctx context.Context) error {
	return s.c.Start(ctx, elm327.Callbacks{
		Reading: func(v obd2.Value) {
			select {
			case s.sendChan <- v:
			default:
			}
		},
	})
}

func runELM(ctx context.Context, sendChan chan<- obd2.Value) {
	err := retry(ctx, &serialOBD{
		sendChan: sendChan,
	})
	if err != nil {
		log.Errorf("elm327 done: %v", err)
	}
}
