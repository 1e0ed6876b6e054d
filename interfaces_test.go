package giulia

import (
	"context"

	"github.com/jd3nn1s/giulia/elm327"
	"github.com/jd3nn1s/giulia/giuliacan"
)

type sourceStub struct {
	startChan chan struct{}
	errChan   chan error
	fnChan    chan func()
}

func createSourceStub() *sourceStub {
	return &sourceStub{
		startChan: make(chan struct{}),
		errChan:   make(chan error),
		fnChan:    make(chan func()),
	}
}

func (s *sourceStub) Close() error {
	return nil
}

func (s *sourceStub) start(ctx context.Context) error {
	select {
	case s.startChan <- struct{}{}:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-s.errChan:
			return err
		case fn := <-s.fnChan:
			fn()
		}
	}
}

type canOBDStub struct {
	sourceStub
	callbacks giuliacan.Callbacks
}

func createCANOBDStub() *canOBDStub {
	return &canOBDStub{
		sourceStub: *createSourceStub(),
	}
}

func (c *canOBDStub) Start(ctx context.Context, callbacks giuliacan.Callbacks) error {
	c.callbacks = callbacks
	return c.sourceStub.start(ctx)
}

type elmStub struct {
	sourceStub
	callbacks elm327.Callbacks
}

func createELMStub() *elmStub {
	return &elmStub{
		sourceStub: *createSourceStub(),
	}
}

func (e *elmStub) Start(ctx context.Context, callbacks elm327.Callbacks) error {
	e.callbacks = callbacks
	return e.sourceStub.start(ctx)
}

type forwarderStub struct {
	prev *Telemetry
	new  *Telemetry
	err  error
}

func (fwd *forwarderStub) Forward(prevTelemetry *Telemetry, newTelemetry *Telemetry) error {
	fwd.prev = prevTelemetry
	fwd.new = newTelemetry
	return fwd.err
}
