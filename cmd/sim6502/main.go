// Package main implements the sim6502 executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sim6502/internal/app"
	"sim6502/internal/machine"
	"sim6502/internal/programs"
	"sim6502/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		programName = flag.String("program", "", "Built-in program to run (see -list)")
		list        = flag.Bool("list", false, "List the built-in programs and machines")
		binaryFile  = flag.String("file", "", "Raw binary image to load and run")
		loadAddr    = flag.String("load", "", "Load address for -file ($1000, 0x1000 or 4096)")
		bootAddr    = flag.String("boot", "", "Start address for -file (defaults to the load address)")
		machineName = flag.String("machine", "", "Boot a machine profile: vic20, c64 or c64-split")
		romDir      = flag.String("roms", "", "Directory holding the machine ROM images")
		backend     = flag.String("backend", "", "Front end for -machine: terminal, ebitengine or headless")
		typeText    = flag.String("type", "", "Text typed into the machine after boot")
		script      = flag.String("script", "", "Lua monitor script run after the program")
		configFile  = flag.String("config", "", "Path to configuration file")
		debugMode   = flag.Bool("debug", false, "Write a debug session (trace.log, dumps) and log verbosely")
		trace       = flag.Bool("trace", false, "Print every executed instruction")
		traceAddr   = flag.String("trace-from", "", "Start tracing when PC first reaches this address")
		breakAddr   = flag.String("break", "", "Stop when PC reaches this address")
		maxSteps    = flag.Int("max", 0, "Instruction budget for program runs")
		saveSlot    = flag.Int("save-state", -1, "Save a snapshot to this slot after the run")
		resumeSlot  = flag.Int("resume", -1, "Resume the program or -file from this snapshot slot")
		help        = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		return 0
	}
	if *showVersion {
		version.WriteBuildInfo(os.Stdout)
		return 0
	}
	if *list {
		printPrograms()
		return 0
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}

	application, err := app.NewApplication(configPath)
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return 1
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()
	setupGracefulShutdown(application)

	config := application.GetConfig()
	if *romDir != "" {
		config.Machine.ROMDir = *romDir
	}
	if *backend != "" {
		config.Video.Backend = *backend
	}
	if *typeText != "" {
		config.Machine.Autotype = *typeText
	}
	if *debugMode {
		config.Debug.Session = true
		config.Debug.LogLevel = "DEBUG"
	}
	if *trace {
		config.Debug.Trace = true
	}
	if *traceAddr != "" {
		config.Debug.Trace = true
		config.Debug.TraceAddress = *traceAddr
	}
	if *breakAddr != "" {
		config.Debug.Breakpoint = *breakAddr
	}
	if *maxSteps > 0 {
		config.Emulation.MaxInstructions = *maxSteps
	}

	if err := checkAddresses(config.Debug.TraceAddress, config.Debug.Breakpoint, *loadAddr, *bootAddr); err != nil {
		log.Printf("%v", err)
		return 2
	}

	source := *programName
	if *binaryFile != "" {
		source = *binaryFile
	}
	if source == "" {
		source = config.Emulation.DefaultProgram
	}

	var result *app.RunResult
	switch {
	case *machineName != "":
		err = application.RunMachine(*machineName)
	case *resumeSlot >= 0:
		result, err = application.ResumeState(*resumeSlot, source)
	case *binaryFile != "":
		load, boot := binaryAddresses(config, *loadAddr, *bootAddr)
		result, err = application.RunBinary(*binaryFile, load, boot)
	case *programName != "" || *script == "":
		result, err = application.RunProgram(source)
	}
	if err != nil {
		log.Printf("Run failed: %v", err)
		return 1
	}
	if result != nil {
		fmt.Print(result)
	}

	if *script != "" {
		if err := application.RunScript(*script); err != nil {
			log.Printf("Script failed: %v", err)
			return 1
		}
	}

	if *saveSlot >= 0 {
		if err := application.SaveState(*saveSlot); err != nil {
			log.Printf("Save state failed: %v", err)
			return 1
		}
	}
	return 0
}

// checkAddresses rejects malformed address flags before anything runs
func checkAddresses(addresses ...string) error {
	for _, a := range addresses {
		if a == "" {
			continue
		}
		if _, err := app.ParseAddress(a); err != nil {
			return err
		}
	}
	return nil
}

// binaryAddresses picks the -file load and boot addresses, falling back to
// the config and then to the load address for boot
func binaryAddresses(config *app.Config, loadFlag, bootFlag string) (uint16, uint16) {
	loadText := firstNonEmpty(loadFlag, config.Emulation.LoadAddress, "$1000")
	load, _ := app.ParseAddress(loadText)

	bootText := bootFlag
	if bootText == "" && loadFlag == "" {
		bootText = config.Emulation.BootAddress
	}
	if bootText == "" {
		return load, load
	}
	boot, _ := app.ParseAddress(bootText)
	return load, boot
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// setupGracefulShutdown restores the terminal before exiting on a signal
func setupGracefulShutdown(application *app.Application) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\nInterrupt received, shutting down...")
		application.Cleanup()
		os.Exit(130)
	}()
}

func printPrograms() {
	fmt.Println("PROGRAMS:")
	for _, p := range programs.All() {
		fmt.Printf("  %-10s %s\n", p.Name, p.Description)
	}
	fmt.Println()
	fmt.Println("MACHINES:")
	for _, name := range machine.ProfileNames() {
		profile, _ := machine.GetProfile(name)
		fmt.Printf("  %-10s %s\n", name, profile.Description)
	}
}

func printUsage() {
	fmt.Println("sim6502 - MOS 6502 emulator")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Runs 6502 machine code: built-in demo programs, raw binary images,")
	fmt.Println("  or a VIC-20 / C64 text screen booted from your own ROM images.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  sim6502 [options]                        # Run the default program")
	fmt.Println("  sim6502 -program <name> [options]        # Run a built-in program")
	fmt.Println("  sim6502 -file <image> -load <addr>       # Run a raw binary")
	fmt.Println("  sim6502 -machine vic20 -roms <dir>       # Boot a machine")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  sim6502 -list")
	fmt.Println("  sim6502 -program weekday -trace")
	fmt.Println("  sim6502 -program countdown -break '$1009' -save-state 1")
	fmt.Println("  sim6502 -program countdown -resume 1")
	fmt.Println("  sim6502 -file demo.bin -load 0x0600 -script inspect.lua")
	fmt.Println("  sim6502 -machine c64 -roms ./roms -backend ebitengine")
	fmt.Println()
	fmt.Println("MONITOR SCRIPTS (Lua):")
	fmt.Println("  peek poke peekw load step run reset regs flag setreg")
	fmt.Println("  breakpoint breakregs clearbreaks disasm dump print")
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("  Escape            - Quit the machine front end")
	fmt.Println("  F5                - Resume after a breakpoint")
	fmt.Println("  Ctrl+Shift+V      - Paste host clipboard (ebitengine)")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/sim6502.json")
	fmt.Println("  ROMs:        ./roms/")
	fmt.Println("  Save States: ./states/")
}
