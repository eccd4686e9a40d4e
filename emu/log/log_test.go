package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestModuleByName(t *testing.T) {
	for _, name := range ModuleNames() {
		mod, ok := ModuleByName(name)
		if !ok {
			t.Errorf("ModuleByName(%q) not found", name)
			continue
		}
		if mod.String() != name {
			t.Errorf("ModuleByName(%q).String() = %q", name, mod.String())
		}
	}
	if _, ok := ModuleByName("<error>"); ok {
		t.Errorf("ModuleByName should not find the invalid module")
	}
	if _, ok := ModuleByName("foo"); ok {
		t.Errorf("ModuleByName(foo) should fail")
	}
}

func TestModuleEnabled(t *testing.T) {
	defer func(mask ModuleMask) { modDebugMask = mask }(modDebugMask)
	modDebugMask = 0

	if ModPPU.Enabled(DebugLevel) {
		t.Errorf("debug enabled for ppu by default")
	}
	if !ModPPU.Enabled(WarnLevel) {
		t.Errorf("warnings must always be enabled")
	}

	EnableDebugModules(ModPPU.Mask() | ModDMA.Mask())
	if !ModPPU.Enabled(DebugLevel) || !ModDMA.Enabled(InfoLevel) {
		t.Errorf("debug not enabled for ppu and dma")
	}
	if ModCPU.Enabled(DebugLevel) {
		t.Errorf("debug enabled for cpu")
	}

	DisableDebugModules(ModPPU.Mask())
	if ModPPU.Enabled(DebugLevel) {
		t.Errorf("debug still enabled for ppu")
	}
}

func TestEntryZDisabledIsNil(t *testing.T) {
	defer func(mask ModuleMask) { modDebugMask = mask }(modDebugMask)
	modDebugMask = 0

	e := ModCPU.DebugZ("not logged")
	if e != nil {
		t.Fatalf("DebugZ on disabled module = %v, want nil", e)
	}
	// Chaining on nil entries is a no-op.
	e.Hex8("a", 1).Hex16("pc", 0x8000).String("s", "x").Error("err", nil).End()
}

type pcContext struct{}

func (pcContext) AddLogContext(z *EntryZ) { z.Hex16("pc", 0xC000) }

func TestEntryZOutput(t *testing.T) {
	defer func(mask ModuleMask) { modDebugMask = mask }(modDebugMask)

	var buf bytes.Buffer
	SetOutput(&buf)
	EnableDebugModules(ModMapper.Mask())

	var ctx pcContext
	AddContext(ctx)
	defer RemoveContext(ctx)

	ModMapper.InfoZ("bank switch").
		Hex8("bank", 0x0A).
		Int("slot", -1).
		Bool("chr", true).
		Error("err", errors.New("boom")).
		End()

	out := buf.String()
	for _, want := range []string{"bank switch", "_mod=mapper", "bank=0A", "slot=-1", "chr=true", "err=boom", "pc=C000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q doesn't contain %q", out, want)
		}
	}
}

func TestFieldValue(t *testing.T) {
	tests := []struct {
		f    zfield
		want any
	}{
		{zfield{kind: kindHex, width: 2, num: 0x3}, "03"},
		{zfield{kind: kindHex, width: 4, num: 0xBEEF}, "BEEF"},
		{zfield{kind: kindUint, num: 42}, uint64(42)},
		{zfield{kind: kindInt, num: uint64(0xFFFFFFFFFFFFFFFF)}, int64(-1)},
		{zfield{kind: kindBool}, false},
		{zfield{kind: kindError}, "<nil>"},
		{zfield{kind: kindStringer, obj: ModSound}, "sound"},
	}
	for _, tt := range tests {
		if got := tt.f.value(); got != tt.want {
			t.Errorf("value() = %#v, want %#v", got, tt.want)
		}
	}
}

func TestInfof(t *testing.T) {
	defer func(mask ModuleMask) { modDebugMask = mask }(modDebugMask)

	var buf bytes.Buffer
	SetOutput(&buf)

	modDebugMask = 0
	ModEmu.Infof("loaded %d banks", 4)
	if buf.Len() != 0 {
		t.Fatalf("disabled module logged %q", buf.String())
	}

	EnableDebugModules(ModEmu.Mask())
	ModEmu.Infof("loaded %d banks", 4)
	if out := buf.String(); !strings.Contains(out, "loaded 4 banks") || !strings.Contains(out, "_mod=emu") {
		t.Errorf("output %q", out)
	}
}
