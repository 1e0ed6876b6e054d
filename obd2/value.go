package obd2

import (
	"fmt"
	"math"
)

// Value is a decoded physical reading. The concrete type carries the
// quantity and unit; String renders the dash display line.
type Value interface {
	fmt.Stringer
	PID() PID
}

type EngineRPM uint32

func (v EngineRPM) PID() PID { return PIDEngineRPM }

func (v EngineRPM) String() string {
	return fmt.Sprintf("Engine RPM = %d", uint32(v))
}

type GearPosition uint8

const (
	GearNeutral GearPosition = iota
	GearReverse
	GearForward
)

// Gear is the currently engaged gear. Number is only meaningful when
// Position is GearForward.
type Gear struct {
	Position GearPosition
	Number   uint8
}

func (v Gear) PID() PID { return PIDGear }

func (v Gear) String() string {
	gearStr := "Neutral"
	switch v.Position {
	case GearReverse:
		gearStr = "Reverse"
	case GearForward:
		gearStr = fmt.Sprintf("%d", v.Number)
	}
	return fmt.Sprintf("Current Engaged Gear = %s", gearStr)
}

// EngineOilTemp in degrees Celsius.
type EngineOilTemp int32

func (v EngineOilTemp) PID() PID { return PIDEngineOilTemp }

func (v EngineOilTemp) String() string {
	return fmt.Sprintf("Engine Oil Temperature = %d C (%d F)", int32(v), fahrenheit(int32(v)))
}

// BatteryIBS is the intelligent battery sensor's state of charge in
// percent. The raw byte is passed through without clamping.
type BatteryIBS uint32

func (v BatteryIBS) PID() PID { return PIDBatteryIBS }

func (v BatteryIBS) String() string {
	return fmt.Sprintf("Battery IBS = %d %%", uint32(v))
}

type BatteryVoltage float32

func (v BatteryVoltage) PID() PID { return PIDBatteryVoltage }

func (v BatteryVoltage) String() string {
	return fmt.Sprintf("Battery = %.1f Volts", float32(v))
}

// AtmosphericPressure in mbar.
type AtmosphericPressure uint32

func (v AtmosphericPressure) PID() PID { return PIDAtmosphericPressure }

func (v AtmosphericPressure) String() string {
	return fmt.Sprintf("Atmospheric Pressure = %d mbar", uint32(v))
}

// BoostPressure in mbar. Same scaling as AtmosphericPressure but a
// distinct quantity from a distinct DID.
type BoostPressure uint32

func (v BoostPressure) PID() PID { return PIDBoostPressure }

func (v BoostPressure) String() string {
	return fmt.Sprintf("Boost Pressure = %d mbar", uint32(v))
}

// ExternalTemp in degrees Celsius.
type ExternalTemp int32

func (v ExternalTemp) PID() PID { return PIDExternalTemp }

func (v ExternalTemp) String() string {
	return fmt.Sprintf("External Temperature = %d C (%d F)", int32(v), fahrenheit(int32(v)))
}

// fahrenheit converts whole degrees Celsius, rounding half away from zero
// so sub-zero temperatures round symmetrically.
func fahrenheit(c int32) int32 {
	return int32(math.Round(float64(c)*9.0/5.0 + 32.0))
}
