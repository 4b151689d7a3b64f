package api

import (
	"io"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/stackvm/config"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	cfg    config.Config
	hasCfg bool
	out    io.Writer
	engine sim.Engine
	freq   sim.Freq
}

// WithConfig sets the run settings. Without it, config.Default is used.
func (b DriverBuilder) WithConfig(cfg config.Config) DriverBuilder {
	b.cfg = cfg
	b.hasCfg = true
	return b
}

// WithOutput sets where program output, advisories and diagnostics go.
func (b DriverBuilder) WithOutput(w io.Writer) DriverBuilder {
	b.out = w
	return b
}

// WithEngine makes the driver run programs on a ticking core driven by
// engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// Build create a driver.
func (b DriverBuilder) Build() Driver {
	d := &driverImpl{
		cfg:    b.cfg,
		out:    b.out,
		engine: b.engine,
		freq:   b.freq,
	}

	if !b.hasCfg {
		d.cfg = config.Default()
	}
	if d.out == nil {
		d.out = os.Stdout
	}
	if d.freq == 0 {
		d.freq = 1 * sim.GHz
	}

	return d
}
