// Package obd2 decodes fixed-format OBD-II response frames from the
// Giulia's diagnostic modules into typed physical readings. Every decoder
// reads the two data operands at bytes 4 and 5 of the raw frame; the
// leading bytes carry the ISO-TP PCI, service and DID and belong to the
// transport.
package obd2

import (
	"github.com/pkg/errors"
)

// Frame is a raw single-frame diagnostic response. Decoders require at
// least minFrameLen bytes and never read past the end.
type Frame []byte

// PID identifies one decodable quantity. The mapping from on-wire DIDs or
// CAN IDs to a PID is owned by the transport; the decoders only see the
// selector.
type PID uint8

const (
	PIDEngineRPM PID = iota
	PIDGear
	PIDEngineOilTemp
	PIDBatteryIBS
	PIDBatteryVoltage
	PIDAtmosphericPressure
	PIDBoostPressure
	PIDExternalTemp
)

func (p PID) String() string {
	switch p {
	case PIDEngineRPM:
		return "engine-rpm"
	case PIDGear:
		return "gear"
	case PIDEngineOilTemp:
		return "engine-oil-temp"
	case PIDBatteryIBS:
		return "battery-ibs"
	case PIDBatteryVoltage:
		return "battery-voltage"
	case PIDAtmosphericPressure:
		return "atmospheric-pressure"
	case PIDBoostPressure:
		return "boost-pressure"
	case PIDExternalTemp:
		return "external-temp"
	}
	return "unknown"
}

var (
	ErrShortFrame = errors.New("frame shorter than minimum length")
	ErrUnknownPID = errors.New("no decoder registered for PID")
)

const (
	minFrameLen = 6

	// gear byte values reported by the transmission module
	gearNeutralRaw = 0x00
	gearReverseRaw = 0x10
)

// DecodeFn decodes one frame into a typed reading.
type DecodeFn func(Frame) (Value, error)

var decoders = map[PID]DecodeFn{
	PIDEngineRPM:           DecodeEngineRPM,
	PIDGear:                DecodeGear,
	PIDEngineOilTemp:       DecodeEngineOilTemp,
	PIDBatteryIBS:          DecodeBatteryIBS,
	PIDBatteryVoltage:      DecodeBatteryVoltage,
	PIDAtmosphericPressure: DecodeAtmosphericPressure,
	PIDBoostPressure:       DecodeBoostPressure,
	PIDExternalTemp:        DecodeExternalTemp,
}

// Decode routes a frame to the decoder registered for pid.
func Decode(pid PID, frame Frame) (Value, error) {
	fn, ok := decoders[pid]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPID, "pid %v", pid)
	}
	return fn(frame)
}

// PIDs returns every registered selector in a stable order.
func PIDs() []PID {
	return []PID{
		PIDEngineRPM,
		PIDGear,
		PIDEngineOilTemp,
		PIDBatteryIBS,
		PIDBatteryVoltage,
		PIDAtmosphericPressure,
		PIDBoostPressure,
		PIDExternalTemp,
	}
}

// operands extracts the A and B data bytes after validating the frame is
// long enough to contain them.
func operands(frame Frame) (a, b byte, err error) {
	if len(frame) < minFrameLen {
		return 0, 0, errors.Wrapf(ErrShortFrame, "got %v bytes, need %v", len(frame), minFrameLen)
	}
	return frame[4], frame[5], nil
}

func DecodeEngineRPM(frame Frame) (Value, error) {
	a, b, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return EngineRPM((uint32(a)*256 + uint32(b)) / 4), nil
}

func DecodeGear(frame Frame) (Value, error) {
	a, _, err := operands(frame)
	if err != nil {
		return nil, err
	}
	switch a {
	case gearReverseRaw:
		return Gear{Position: GearReverse}, nil
	case gearNeutralRaw:
		return Gear{Position: GearNeutral}, nil
	}
	return Gear{Position: GearForward, Number: a}, nil
}

// DecodeEngineOilTemp reads B as a signed byte. The module reports plain
// degrees with no -40 offset, so negative temperatures arrive as
// two's-complement values.
func DecodeEngineOilTemp(frame Frame) (Value, error) {
	_, b, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return EngineOilTemp(int8(b)), nil
}

func DecodeBatteryIBS(frame Frame) (Value, error) {
	a, _, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return BatteryIBS(a), nil
}

func DecodeBatteryVoltage(frame Frame) (Value, error) {
	_, b, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return BatteryVoltage(float32(b) / 10.0), nil
}

func DecodeAtmosphericPressure(frame Frame) (Value, error) {
	a, b, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return AtmosphericPressure(uint32(a)*256 + uint32(b)), nil
}

func DecodeBoostPressure(frame Frame) (Value, error) {
	a, b, err := operands(frame)
	if err != nil {
		return nil, err
	}
	return BoostPressure(uint32(a)*256 + uint32(b)), nil
}

func DecodeExternalTemp(frame Frame) (Value, error) {
	a, _, err := operands(frame)
	if err != nil {
		return nil, err
	}
	// truncating halve first, then offset
	return ExternalTemp(int32(a)/2 - 40), nil
}
