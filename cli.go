package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"nescore/emu"
	"nescore/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM headless
	checkMode                // Determinism check
	romInfosMode             // Show ROM infos
	execMode                 // Run a raw 6502 program
	versionMode              // Show nescore version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator, headless."`
		Check    Check    `cmd:"" help:"Check that emulation of a ROM is deterministic."`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Exec     Exec     `cmd:"" help:"Run a raw 6502 program and print the CPU state."`
		Version  Version  `cmd:"" help:"Show nescore version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"true" type:"existingfile"`

		Frames      uint64     `name:"frames" help:"Stop after that many frames (0 means never)."`
		Paused      bool       `name:"paused" help:"Start with emulation paused."`
		CPUProfile  string     `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Trace       *outfile   `name:"trace" help:"Write CPU trace log." placeholder:"FILE|stdout|stderr"`
		TraceFormat string     `name:"trace-format" help:"Trace log format (text|json)."`
		Screenshot  string     `name:"screenshot" help:"Save last frame as PNG." type:"path" placeholder:"FILE.png"`
		Replay      *replayArg `name:"replay" help:"${replay_help}" placeholder:"FILE"`
	}

	Check struct {
		RomPath string `arg:"" name:"/path/to/rom" required:"true" type:"existingfile"`

		Frames    int        `name:"frames" help:"Number of frames to compare." default:"600"`
		Instances int        `name:"instances" help:"Number of parallel instances." default:"4"`
		Replay    *replayArg `name:"replay" help:"${replay_help}" placeholder:"FILE"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"existingfile"`
	}

	Exec struct {
		Program string `arg:"" name:"hex" help:"Program as hexadecimal bytes, loaded at $8000."`

		MaxCycles int64    `name:"max-cycles" help:"Stop after that many CPU cycles." default:"100000"`
		Dump      hexRange `name:"dump" help:"CPU address range to dump." default:"0000-00FF" placeholder:"START-END"`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":    "ROM to run, in iNES or NES 2.0 format.",
	"cpuprofile_help": "Write CPU profile in directory.",
	"log_help":        "Enable logging for specified modules.",
	"replay_help":     "Replay controller inputs from file.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("nescore"),
		kong.Description("NES emulation core."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	// Command() is "name <args>", only the name matters.
	cmd, _, _ := strings.Cut(ctx.Command(), " ")
	cfg.mode = map[string]mode{
		"run":       runMode,
		"check":     checkMode,
		"rom-infos": romInfosMode,
		"exec":      execMode,
		"version":   versionMode,
	}[cmd]
	return cfg
}

const logHelp = `
Log modules:
  --log takes a comma-separated list of modules, whose debug and info logs
  are then shown. Warnings and errors are always shown.

  Modules: %s
  'all' enables every module, 'no' disables logging entirely.
`

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		fmt.Fprintf(ctx.Stdout, logHelp, strings.Join(log.ModuleNames(), ", "))
	}
	return nil
}

// logModMask is the --log flag.
type logModMask log.ModuleMask

// Decode implements kong.MapperValue.
func (lm *logModMask) Decode(ctx *kong.DecodeContext) error {
	var list string
	if err := ctx.Scan.PopValueInto("modules", &list); err != nil {
		return err
	}

	if list == "no" {
		log.Disable()
		return nil
	}
	if slices.Contains(strings.Split(list, ","), "no") {
		return fmt.Errorf("'no' can't be combined with other log modules")
	}

	mask, err := emu.ParseLogModules(list)
	if err != nil {
		return err
	}
	*lm = logModMask(mask)
	log.EnableDebugModules(mask)
	return nil
}

// outfile is a file flag where "stdout" and "stderr" name the standard
// streams, which are never closed.
type outfile struct {
	io.WriteCloser
	name string
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Decode implements kong.MapperValue.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	if err := ctx.Scan.PopValueInto("file", &f.name); err != nil {
		return err
	}

	switch f.name {
	case "stdout":
		f.WriteCloser = nopCloser{os.Stdout}
	case "stderr":
		f.WriteCloser = nopCloser{os.Stderr}
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.WriteCloser = fd
	}
	return nil
}

func (f *outfile) String() string { return f.name }

// hexRange is an inclusive range of CPU addresses, given as START-END.
type hexRange struct {
	start, end uint16
}

// Decode implements kong.MapperValue.
func (r *hexRange) Decode(ctx *kong.DecodeContext) error {
	var s string
	if err := ctx.Scan.PopValueInto("range", &s); err != nil {
		return err
	}
	if _, err := fmt.Sscanf(s, "%x-%x", &r.start, &r.end); err != nil {
		return fmt.Errorf("invalid address range %q: %v", s, err)
	}
	if r.end < r.start {
		return fmt.Errorf("invalid address range %q: end before start", s)
	}
	return nil
}

// checkf exits the program if err is not nil.
func checkf(err error, format string, args ...any) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "nescore: %s: %v\n", fmt.Sprintf(format, args...), err)
		os.Exit(1)
	}
}
