package giulia

import (
	"context"

	"github.com/jd3nn1s/giulia/elm327"
	"github.com/jd3nn1s/giulia/giuliacan"
)

type CANOBD interface {
	Close() error
	Start(context.Context, giuliacan.Callbacks) error
}

type ELM327 interface {
	Close() error
	Start(context.Context, elm327.Callbacks) error
}

// Forwarder receives the previous and new telemetry whenever a decoded
// reading changed the current state.
type Forwarder interface {
	Forward(prevTelemetry *Telemetry, newTelemetry *Telemetry) error
}
