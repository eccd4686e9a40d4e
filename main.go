package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"nescore/emu"
	"nescore/emu/log"
	"nescore/ines"
)

func main() {
	cli := parseArgs(os.Args[1:])
	cfg := emu.LoadConfigOrDefault()

	// Modules from the config file are enabled when none are given on the
	// command line.
	if cli.Log == 0 && cfg.General.Log != "" {
		mask, err := emu.ParseLogModules(cfg.General.Log)
		checkf(err, "invalid log modules in config")
		log.EnableDebugModules(mask)
	}

	switch cli.mode {
	case runMode:
		runMain(cli.Run, cfg)
	case checkMode:
		checkMain(cli.Check)
	case execMode:
		execMain(cli.Exec)
	case romInfosMode:
		rom, err := ines.Open(cli.RomInfos.RomPath)
		checkf(err, "failed to open rom")
		rom.PrintInfos(os.Stdout)
	case versionMode:
		printVersion()
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("nescore", version)
}
