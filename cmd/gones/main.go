// Command gones runs the NES emulator core against an iNES ROM file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/golang/glog"

	"gones/internal/cartridge"
	"gones/internal/console"
	"gones/internal/graphics"
	"gones/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dumpDir   = flag.String("dump-dir", ".", "directory to write core.dump/oam.dump/ppu.dump to on shutdown")
		debug     = flag.Bool("debug", false, "enable verbose logging")
		headless  = flag.Bool("headless", false, "run without a window (integration tests / CI)")
		showHelp  = flag.Bool("help", false, "show usage")
		showVers  = flag.Bool("version", false, "show version information")
	)
	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return 0
	}
	if *showVers {
		fmt.Println(version.GetDetailedVersion())
		return 0
	}
	if *debug {
		flag.Set("v", "2")
	}

	if flag.NArg() != 1 {
		printUsage()
		return 1
	}
	romPath := flag.Arg(0)

	f, err := os.Open(romPath)
	if err != nil {
		glog.Errorf("gones: opening %s: %v", romPath, err)
		return 1
	}
	cart, err := cartridge.Load(f)
	f.Close()
	if err != nil {
		glog.Errorf("gones: loading %s: %v", romPath, err)
		return 1
	}

	con := console.New(cart)
	con.Reset()

	backend, err := graphics.NewBackend(graphics.Config{
		WindowTitle: "gones",
		Headless:    *headless,
	})
	if err != nil {
		glog.Errorf("gones: creating graphics backend: %v", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	var interrupted atomic.Bool
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		if _, ok := <-sig; ok {
			glog.Warningf("gones: interrupt received, stopping")
			interrupted.Store(true)
			con.Stop()
			cancel()
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- con.Run(ctx)
		// Unblock backends whose Run only returns on Close (headless).
		backend.Close()
	}()

	// Run blocks on the main goroutine for the window's lifetime; ebiten
	// requires its event loop to run there.
	if err := backend.Run(con.Frame, con.SetGamepadState); err != nil {
		glog.Warningf("gones: graphics backend: %v", err)
	}
	cancel()
	signal.Stop(sig)
	close(sig)

	runResult := <-runErr
	backend.Close()

	switch {
	case interrupted.Load():
		if dumpErr := con.DumpState(*dumpDir); dumpErr != nil {
			glog.Errorf("gones: %v", dumpErr)
		}
		return 1
	case runResult != nil:
		glog.Errorf("gones: fatal: %v", runResult)
		if dumpErr := con.DumpState(*dumpDir); dumpErr != nil {
			glog.Errorf("gones: %v", dumpErr)
		}
		return 1
	default:
		return 0
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: gones [flags] <rom.nes>")
	flag.PrintDefaults()
}
