package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/thermopi/max31865"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func main() {
	bus := flag.String("bus", "", "Name of the bus")
	devFlag := flag.String("type", "", "Sensor type (PT100 or PT1000)")
	profileFlag := flag.String("config", "", "Path to a YAML sensor profile")
	flag.Parse()

	var opts *max31865.Opts
	var err error

	switch {
	case *profileFlag != "":
		opts, err = loadProfile(*profileFlag)
		if err != nil {
			log.Fatalf("profile load failed: %v", err)
		}
	default:
		devType := strings.ToLower(*devFlag)
		switch devType {
		case "pt100":
			opts = max31865.AdafruitPT100()
		case "pt1000":
			opts = max31865.AdafruitPT1000()
		default:
			log.Fatal("Invalid sensor type")
		}
	}

	_, err = host.Init()
	if err != nil {
		log.Fatal(err)
	}

	port := *bus
	if port == "" {
		port = opts.Port
	}
	sb, err := spireg.Open(port)
	if err != nil {
		log.Fatal(err)
	}

	dev, err := max31865.New(sb, opts)
	if err != nil {
		log.Fatal(err)
	}

	ticker := time.NewTicker(1 * time.Second)

	for {
		var e physic.Env
		err = dev.Sense(&e)
		if err != nil {
			log.Print(err)
		}
		log.Printf("Temperature: %f", e.Temperature.Celsius())

		<-ticker.C
	}
}
