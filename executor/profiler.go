// Package executor provides process-level helpers (CPU/memory/block
// profiling) for the ribd composition root.
package executor

import (
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/named-data/yarib/core"
)

// ProfileConfig names the profile output files ribd was started with. Any
// empty field disables that profile kind.
type ProfileConfig struct {
	CpuProfile   string
	MemProfile   string
	BlockProfile string
}

// Profiler drives the standard runtime/pprof profiling hooks for the
// lifetime of the process.
type Profiler struct {
	config  ProfileConfig
	cpuFile *os.File
	block   *pprof.Profile
}

// NewProfiler constructs a Profiler for the given configuration.
func NewProfiler(config ProfileConfig) *Profiler {
	return &Profiler{config: config}
}

// Start begins CPU and block profiling, if configured.
func (p *Profiler) Start() (err error) {
	if p.config.CpuProfile != "" {
		p.cpuFile, err = os.Create(p.config.CpuProfile)
		if err != nil {
			core.LogFatal("Main", "Unable to open output file for CPU profile: "+err.Error())
		}

		core.LogInfo("Main", "Profiling CPU - outputting to "+p.config.CpuProfile)
		pprof.StartCPUProfile(p.cpuFile)
	}

	if p.config.BlockProfile != "" {
		core.LogInfo("Main", "Profiling blocking operations - outputting to "+p.config.BlockProfile)
		runtime.SetBlockProfileRate(1)
		p.block = pprof.Lookup("block")
	}

	return
}

// Stop finalizes all running profiles and writes the memory profile, if
// configured, since a heap snapshot is only meaningful at a fixed point.
func (p *Profiler) Stop() {
	if p.block != nil {
		blockProfileFile, err := os.Create(p.config.BlockProfile)
		if err != nil {
			core.LogFatal("Main", "Unable to open output file for block profile: "+err.Error())
		}
		if err := p.block.WriteTo(blockProfileFile, 0); err != nil {
			core.LogFatal("Main", "Unable to write block profile: "+err.Error())
		}
		blockProfileFile.Close()
	}

	if p.config.MemProfile != "" {
		memProfileFile, err := os.Create(p.config.MemProfile)
		if err != nil {
			core.LogFatal("Main", "Unable to open output file for memory profile: "+err.Error())
		}
		defer memProfileFile.Close()

		core.LogInfo("Main", "Profiling memory - outputting to "+p.config.MemProfile)
		runtime.GC()
		if err := pprof.WriteHeapProfile(memProfileFile); err != nil {
			core.LogFatal("Main", "Unable to write memory profile: "+err.Error())
		}
	}

	if p.cpuFile != nil {
		pprof.StopCPUProfile()
		p.cpuFile.Close()
	}
}
