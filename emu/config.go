package emu

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"nescore/emu/log"
	"nescore/hw"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

type Config struct {
	General   GeneralConfig   `toml:"general"`
	Emulation EmulationConfig `toml:"emulation"`
	Trace     TraceConfig     `toml:"trace"`

	TraceOut io.WriteCloser `toml:"-"`
}

type GeneralConfig struct {
	// Comma-separated list of modules for which debug logging is enabled, or
	// "all".
	Log string `toml:"log"`
}

type EmulationConfig struct {
	// Stop after that many frames, 0 means never.
	Frames      uint64 `toml:"frames"`
	StartPaused bool   `toml:"start_paused"`
}

type TraceConfig struct {
	Format string `toml:"format"`
}

// TraceFormat returns the configured trace format, text if unset.
func (tcfg TraceConfig) TraceFormat() (hw.TraceFormat, error) {
	if tcfg.Format == "" {
		return hw.TraceText, nil
	}
	return hw.ParseTraceFormat(tcfg.Format)
}

// ParseLogModules parses a comma-separated list of module names into a mask.
func ParseLogModules(s string) (log.ModuleMask, error) {
	var mask log.ModuleMask
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "":
			continue
		case "all":
			return log.ModuleMaskAll, nil
		}
		mod, ok := log.ModuleByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown log module %q (valid: %s)", name, strings.Join(log.ModuleNames(), ","))
		}
		mask |= mod.Mask()
	}
	return mask, nil
}

var ConfigDir = sync.OnceValue(func() string {
	dir := configdir.LocalConfig("nescore")
	if err := configdir.MakePath(dir); err != nil {
		log.ModEmu.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the nescore config
// directory, or provide a default one.
func LoadConfigOrDefault() Config {
	return loadConfig(filepath.Join(ConfigDir(), cfgFilename))
}

func loadConfig(path string) Config {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			log.ModEmu.WarnZ("Failed to load config, using default").Error("err", err).End()
		}
		return Config{}
	}
	log.ModEmu.Infof("config loaded from %s", path)
	return cfg
}

// SaveConfig into nescore config directory.
func SaveConfig(cfg Config) error {
	return saveConfig(filepath.Join(ConfigDir(), cfgFilename), cfg)
}

func saveConfig(path string, cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}
