package giulia

import (
	"github.com/jd3nn1s/giulia/obd2"
)

// ReadingCache keeps the last successfully decoded value per PID. The
// decoders themselves are stateless; staleness tracking lives here with
// the owner of the main loop.
type ReadingCache struct {
	values map[obd2.PID]obd2.Value
}

func NewReadingCache() *ReadingCache {
	return &ReadingCache{
		values: make(map[obd2.PID]obd2.Value),
	}
}

func (c *ReadingCache) Update(v obd2.Value) {
	c.values[v.PID()] = v
}

func (c *ReadingCache) Get(pid obd2.PID) (obd2.Value, bool) {
	v, ok := c.values[pid]
	return v, ok
}

// Readings returns the cached values in stable PID order.
func (c *ReadingCache) Readings() []obd2.Value {
	readings := make([]obd2.Value, 0, len(c.values))
	for _, pid := range obd2.PIDs() {
		if v, ok := c.values[pid]; ok {
			readings = append(readings, v)
		}
	}
	return readings
}
