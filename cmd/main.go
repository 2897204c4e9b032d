package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/nevisdale/gbtic/internal/gb"
	"github.com/nevisdale/gbtic/internal/ui"
	"github.com/pkg/profile"
)

func main() {
	romPath := flag.String("rom", "", "path to the cartridge image")
	bootPath := flag.String("boot", "", "path to a 256 byte boot ROM (optional)")
	modelName := flag.String("model", "dmg", "hardware model: dmg, pocket, sgb, cgb")
	profileMode := flag.String("profile", "", "enable profiling: cpu or mem")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	if *romPath == "" {
		log.Fatalf("no cartridge image, use -rom")
	}

	model, err := gb.ParseModel(*modelName)
	if err != nil {
		log.Fatalf("couldn't parse model: %s", err)
	}

	cart, err := gb.NewCartFromFile(*romPath)
	if err != nil {
		log.Fatalf("couldn't load cartridge: %s", err)
	}

	bus := gb.NewBus(model)
	if *bootPath != "" {
		boot, err := os.ReadFile(*bootPath)
		if err != nil {
			log.Fatalf("couldn't read boot ROM: %s", err)
		}
		if err := bus.LoadBootROM(boot); err != nil {
			log.Fatalf("couldn't load boot ROM: %s", err)
		}
	}
	bus.LoadCart(cart)

	savePath := strings.TrimSuffix(*romPath, ".gb") + ".sav"
	if cart.HasBattery() {
		if data, err := os.ReadFile(savePath); err == nil {
			cart.LoadBatteryRAM(data)
		}
	}

	err = ui.RunUI(ui.New(bus))

	if cart.HasBattery() {
		if saveErr := os.WriteFile(savePath, cart.BatteryRAM(), 0o644); saveErr != nil {
			log.Printf("couldn't save battery RAM: %s", saveErr)
		}
	}

	if err != nil {
		var opErr *gb.OpcodeError
		if errors.As(err, &opErr) {
			log.Fatalf("emulation stopped: %s", opErr)
		}
		log.Fatalf("emulation stopped: %s", err)
	}
}
