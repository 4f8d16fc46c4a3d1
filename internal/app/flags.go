package app

import "flag"

// DefaultTPS caps the viewer's step rate when the configuration leaves it
// unlimited.
const DefaultTPS = 30

// Flags holds the viewer command-line parameters.
type Flags struct {
	ConfigPath string
	Scale      int
	TPS        int
	Seed       int64
	HUDWidth   int
	Paused     bool
}

// NewFlags returns Flags populated with the viewer defaults.
func NewFlags() *Flags {
	return &Flags{Scale: 3, TPS: DefaultTPS, Seed: 1, HUDWidth: 240}
}

// Bind attaches the flags to fs.
func (f *Flags) Bind(fs *flag.FlagSet) {
	fs.StringVar(&f.ConfigPath, "config", f.ConfigPath, "TOML configuration file")
	fs.IntVar(&f.Scale, "scale", f.Scale, "pixel scale multiplier")
	fs.IntVar(&f.TPS, "tps", f.TPS, "simulation steps per second (0 for unlimited)")
	fs.Int64Var(&f.Seed, "seed", f.Seed, "seed for the random source and resets")
	fs.IntVar(&f.HUDWidth, "hud", f.HUDWidth, "side panel width in pixels (0 hides it)")
	fs.BoolVar(&f.Paused, "paused", f.Paused, "start paused")
}

// Overrides returns configuration overrides for the flags set explicitly on
// fs, so a configuration file keeps its values unless the user asks otherwise.
func (f *Flags) Overrides(fs *flag.FlagSet) map[string]string {
	out := map[string]string{}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "scale", "tps", "seed":
			out[fl.Name] = fl.Value.String()
		}
	})
	return out
}
