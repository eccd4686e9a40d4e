package log

import (
	"fmt"
	"slices"
)

type ModuleMask uint64
type Module uint

const (
	ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF
)

// Log modules, one per subsystem.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModMem
	ModHwIo
	ModPPU
	ModInput
	ModSound
	ModDMA
	ModMapper

	numModules
)

var modDebugMask ModuleMask

var modNames = [numModules]string{
	"<error>", "emu", "cpu", "mem", "hwio", "ppu", "input", "sound", "dma", "mapper",
}

// ModuleByName returns the module called name.
func ModuleByName(name string) (Module, bool) {
	for mod := ModEmu; mod < numModules; mod++ {
		if modNames[mod] == name {
			return mod, true
		}
	}
	return 0, false
}

// ModuleNames returns the names of all modules.
func ModuleNames() []string {
	return slices.Clone(modNames[ModEmu:])
}

func EnableDebugModules(mask ModuleMask) {
	modDebugMask |= mask
}

func DisableDebugModules(mask ModuleMask) {
	modDebugMask &^= mask
}

func (mod Module) Mask() ModuleMask {
	return 1 << ModuleMask(mod)
}

func (mod Module) String() string {
	if mod < numModules {
		return modNames[mod]
	}
	return modNames[0]
}

// Enabled reports whether mod logs at level. Warnings and errors are always
// logged, info and debug only for modules enabled with EnableDebugModules.
func (mod Module) Enabled(level Level) bool {
	if disabled {
		return level <= FatalLevel
	}
	return level <= WarnLevel || modDebugMask&mod.Mask() != 0
}

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if mod.Enabled(lvl) {
		return newEntryZ(mod, lvl, msg)
	}
	return nil
}

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }

// printf-style logging, the message is only formatted if mod logs at lvl.
func (mod Module) logf(lvl Level, format string, args []any) {
	if e := mod.logz(lvl, ""); e != nil {
		e.msg = fmt.Sprintf(format, args...)
		e.End()
	}
}

func (mod Module) Infof(format string, args ...any)  { mod.logf(InfoLevel, format, args) }
func (mod Module) Fatalf(format string, args ...any) { mod.logf(FatalLevel, format, args) }
