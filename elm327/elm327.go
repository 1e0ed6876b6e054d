// Package elm327 polls the car through an ELM327-style serial adapter.
// The adapter speaks a '\r'-terminated command protocol and answers with
// hex digit lines; responses are re-framed into the raw single-frame
// layout before being handed to the obd2 decoders.
package elm327

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jd3nn1s/giulia/obd2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const (
	baudRate     = 38400
	pollInterval = 250 * time.Millisecond
)

// Same DID set as the CAN transport; the adapter forwards the requests
// onto the bus for us.
var dids = []struct {
	did uint16
	pid obd2.PID
}{
	{0x1000, obd2.PIDEngineRPM},
	{0x1003, obd2.PIDExternalTemp},
	{0x1004, obd2.PIDBatteryVoltage},
	{0x1302, obd2.PIDEngineOilTemp},
	{0x1925, obd2.PIDGear},
	{0x18BE, obd2.PIDAtmosphericPressure},
	{0x195A, obd2.PIDBoostPressure},
	{0x19BD, obd2.PIDBatteryIBS},
}

// reset, echo off, headers off
var initCommands = []string{"ATZ", "ATE0", "ATH0"}

type ReadingFn func(v obd2.Value)

type Callbacks struct {
	Reading ReadingFn
}

// to allow testing
var openPort = func(portName string) (io.ReadWriteCloser, error) {
	return serial.Open(portName, &serial.Mode{BaudRate: baudRate})
}

type Connection struct {
	port io.ReadWriteCloser
	r    *bufio.Reader
	cb   Callbacks
}

func Connect(portName string) (*Connection, error) {
	port, err := openPort(portName)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open serial port %s", portName)
	}
	c := &Connection{
		port: port,
		r:    bufio.NewReader(port),
	}
	if err := c.init(); err != nil {
		_ = port.Close()
		return nil, err
	}
	return c, nil
}

func (c *Connection) init() error {
	for _, cmd := range initCommands {
		if err := c.send(cmd); err != nil {
			return err
		}
		// adapters echo status text after a reset; drain to the prompt
		if _, err := c.readLine(); err != nil {
			return errors.Wrapf(err, "no response to %s", cmd)
		}
	}
	log.Info("ELM327 adapter initialized")
	return nil
}

func (c *Connection) Close() error {
	if c.port == nil {
		return errors.New("serial port not open")
	}
	return c.port.Close()
}

func (c *Connection) Start(ctx context.Context, cb Callbacks) error {
	c.cb = cb
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	n := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		entry := dids[n%len(dids)]
		n++
		v, err := c.query(entry.did, entry.pid)
		if err != nil {
			return errors.Wrapf(err, "query of DID %#04x failed", entry.did)
		}
		if v == nil {
			// module had nothing to say for this DID
			continue
		}
		if c.cb.Reading != nil {
			c.cb.Reading(v)
		}
	}
}

// query requests one DID and decodes the response. A nil value with nil
// error means the adapter reported NO DATA.
func (c *Connection) query(did uint16, pid obd2.PID) (obd2.Value, error) {
	if err := c.send(fmt.Sprintf("22%04X", did)); err != nil {
		return nil, err
	}
	line, err := c.readLine()
	if err != nil {
		return nil, err
	}
	frame, err := parseFrame(line)
	if err != nil {
		log.WithField("did", did).
			WithField("line", line).
			Warn("discarding adapter response: ", err)
		return nil, nil
	}
	v, err := obd2.Decode(pid, frame)
	if err != nil {
		log.WithField("did", did).Warn("unable to decode frame: ", err)
		return nil, nil
	}
	return v, nil
}

func (c *Connection) send(cmd string) error {
	if _, err := io.WriteString(c.port, cmd+"\r"); err != nil {
		return errors.Wrapf(err, "unable to send %q", cmd)
	}
	return nil
}

// readLine collects bytes until the adapter terminates a line with '\r'
// or re-arms its '>' prompt. Blank lines are skipped.
func (c *Connection) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := c.r.ReadByte()
		if err != nil {
			return "", errors.Wrap(err, "serial read failed")
		}
		switch b {
		case '\r', '\n', '>':
			if sb.Len() == 0 {
				continue
			}
			return sb.String(), nil
		default:
			sb.WriteByte(b)
		}
	}
}

// parseFrame turns a hex response line into a decodable frame. The ELM
// strips the ISO-TP PCI byte, so it is restored from the payload length
// to recover the raw single-frame layout.
func parseFrame(line string) (obd2.Frame, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return nil, errors.New("empty response line")
	case strings.Contains(line, "NO DATA"):
		return nil, errors.New("no data for request")
	case strings.Contains(line, "ERROR"):
		return nil, errors.Errorf("adapter error: %s", line)
	}
	payload, err := hex.DecodeString(strings.ReplaceAll(line, " ", ""))
	if err != nil {
		return nil, errors.Wrapf(err, "response %q is not hex", line)
	}
	frame := make(obd2.Frame, 0, len(payload)+1)
	frame = append(frame, byte(len(payload)))
	return append(frame, payload...), nil
}
