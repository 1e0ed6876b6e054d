package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jd3nn1s/giulia"
	"github.com/jd3nn1s/giulia/forwarder"
	log "github.com/sirupsen/logrus"
)

var testMode = flag.Bool("testmode", false, "generate test data")
var printTelemetry = flag.Bool("print-telemetry", false, "print decoded readings to stdout")
var useSerial = flag.Bool("serial", false, "use an ELM327 serial adapter instead of the CAN bus")

func main() {
	log.SetLevel(log.InfoLevel)
	flag.Parse()

	ctx := context.Background()

	jc := giulia.NewGiulia()
	fwder, err := forwarder.NewUDPForwarder("udpforwarder.toml")
	if err != nil {
		log.Fatal("unable to load UDP forwarder: ", err)
	}
	go func() {
		_ = fwder.Start(ctx)
	}()
	jc.AddForwarder(fwder)
	jc.SetTestMode(*testMode)
	jc.SetSerialMode(*useSerial)
	jc.Start(ctx)

	for {
		changed := jc.CheckChannels()
		if changed {
			if *printTelemetry {
				for _, v := range jc.Readings() {
					fmt.Println(v)
				}
			}
			jc.TelemetryUpdate()
		}
	}
}
