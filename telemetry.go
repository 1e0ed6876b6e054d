package giulia

import (
	"github.com/jd3nn1s/giulia/obd2"
)

// Gear positions as carried in Telemetry. Matches obd2.GearPosition
// values; kept as a plain byte so the struct stays comparable and has a
// fixed wire size.
const (
	GearNeutral uint8 = iota
	GearReverse
	GearForward
)

// Telemetry is the latest decoded state of the car. All fields are
// fixed-size so the struct can be compared for change detection and
// binary-encoded by forwarders as-is.
type Telemetry struct {
	RPM          uint32
	GearPosition uint8
	GearNumber   uint8

	OilTemp      int32
	ExternalTemp int32

	BatteryCharge  uint8
	BatteryVoltage float32

	AtmosphericPressure uint32
	BoostPressure       uint32
}

func applyReading(t *Telemetry, v obd2.Value) {
	switch v := v.(type) {
	case obd2.EngineRPM:
		t.RPM = uint32(v)
	case obd2.Gear:
		t.GearPosition = uint8(v.Position)
		t.GearNumber = v.Number
	case obd2.EngineOilTemp:
		t.OilTemp = int32(v)
	case obd2.ExternalTemp:
		t.ExternalTemp = int32(v)
	case obd2.BatteryIBS:
		t.BatteryCharge = uint8(v)
	case obd2.BatteryVoltage:
		t.BatteryVoltage = float32(v)
	case obd2.AtmosphericPressure:
		t.AtmosphericPressure = uint32(v)
	case obd2.BoostPressure:
		t.BoostPressure = uint32(v)
	}
}
