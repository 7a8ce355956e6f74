package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/thelolagemann/dmgcore/internal/gameboy"
	"github.com/thelolagemann/dmgcore/pkg/config"
	"github.com/thelolagemann/dmgcore/pkg/debugger"
	_ "github.com/thelolagemann/dmgcore/pkg/debugger/repl"
	_ "github.com/thelolagemann/dmgcore/pkg/debugger/script"
	"github.com/thelolagemann/dmgcore/pkg/debugger/web"
	"github.com/thelolagemann/dmgcore/pkg/emulator"
	"github.com/thelolagemann/dmgcore/pkg/log"
	"github.com/thelolagemann/dmgcore/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configFile := flag.String("config", "", "The YAML configuration file to load")
	romFile := flag.String("rom", "", "The rom file to load")
	bootROM := flag.String("boot", "", "The boot rom file to load")
	frontend := flag.String("frontend", "", fmt.Sprintf("The debugger front-end to use, one of %v", config.Frontends))
	logLevel := flag.String("log-level", "", "The log level (debug, info, warn, error)")
	trace := flag.Bool("trace", false, "Log every executed instruction at debug level")
	breakpoints := flag.String("break", "", "Comma separated breakpoint addresses, in hex")
	debugger.RegisterFlags(flag.CommandLine)
	flag.Parse()

	// flags take precedence over the configuration file
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return err
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["rom"] {
		cfg.ROM = *romFile
	}
	if set["boot"] {
		cfg.Boot = *bootROM
	}
	if set["frontend"] {
		cfg.Frontend = *frontend
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}
	if set["trace"] {
		cfg.Trace = *trace
	}
	if set["break"] {
		cfg.Breakpoints = strings.Split(*breakpoints, ",")
	}
	if cfg.Listen != "" && !set["web-listen"] {
		if err := debugger.SetOption(flag.CommandLine, "web", "listen", cfg.Listen); err != nil {
			return err
		}
	}
	if cfg.Script != "" && !set["script-file"] {
		if err := debugger.SetOption(flag.CommandLine, "script", "file", cfg.Script); err != nil {
			return err
		}
	}
	if set["script-file"] {
		cfg.Script = flag.Lookup("script-file").Value.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := log.NewWithLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	// open the rom file
	rom, err := utils.LoadFile(cfg.ROM)
	if err != nil {
		return err
	}

	addrs, err := cfg.BreakpointAddresses()
	if err != nil {
		return err
	}
	opts := []gameboy.Opt{gameboy.WithLogger(logger), gameboy.WithBreakpoints(addrs...)}
	if cfg.Boot != "" {
		boot, err := utils.LoadFile(cfg.Boot)
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithBootROM(boot))
	} else {
		opts = append(opts, gameboy.NoBios())
	}
	if cfg.Trace {
		opts = append(opts, gameboy.Trace())
	}

	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands := make(chan emulator.CommandPacket)
	responses := make(chan emulator.ResponsePacket)
	served := make(chan error, 1)
	go func() {
		served <- gb.Serve(ctx, commands, responses)
	}()
	client := emulator.NewClient(commands, responses)

	if s, ok := debugger.GetFrontend("web").(*web.Server); ok {
		s.Logger = logger
	}

	if cfg.Frontend == "none" {
		err = runHeadless(ctx, client, logger)
	} else {
		err = debugger.GetFrontend(cfg.Frontend).Start(ctx, client)
	}

	// stop serving, if the front-end has not already
	client.SendCommand(emulator.CommandPacket{Command: emulator.CommandClose})
	if serveErr := <-served; err == nil && !errors.Is(serveErr, context.Canceled) {
		err = serveErr
	}
	return err
}

// runHeadless runs the emulator until it stops on its own, logging
// the final state.
func runHeadless(ctx context.Context, emu *emulator.Client, logger log.Logger) error {
	if resp := emu.SendCommand(emulator.CommandPacket{Command: emulator.CommandContinue}); resp.Error != nil {
		return resp.Error
	}

	select {
	case <-ctx.Done():
		return nil
	case ev, ok := <-emu.Events():
		if !ok {
			return emulator.ErrClosed
		}
		for _, line := range ev.Lines {
			logger.Infof("%s", line)
		}
		if ev.Registers != nil {
			for _, line := range strings.Split(ev.Registers.String(), "\n") {
				logger.Infof("%s", line)
			}
		}
		return ev.Error
	}
}
