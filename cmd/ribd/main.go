/* yarib - RIB core for an NDN forwarding daemon
 *
 * Copyright (C) 2020-2022 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package main dispatches the ribd command tree ("run", "version") and,
// for "run", wires together a Rib, its InheritingFibUpdater, and the
// Host-to-Gateway readvertise policy behind a single cooperative event
// loop, standing in for the face-I/O-driven management surface a full
// forwarding daemon would expose.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/named-data/yarib/cmd"
	"github.com/named-data/yarib/core"
	"github.com/named-data/yarib/executor"
	"github.com/named-data/yarib/ndn"
	"github.com/named-data/yarib/readvertise"
	"github.com/named-data/yarib/table"
)

// Version of the daemon, set by the linker at build time.
var Version string

// BuildTime contains the timestamp of when this version was built.
var BuildTime string

func main() {
	tree := cmd.CmdTree{
		Name: "ribd",
		Help: "NDN Routing Information Base Daemon",
		Sub: []*cmd.CmdTree{{
			Name: "run",
			Help: "Start the RIB daemon",
			Fun:  Run,
		}, {
			Name: "version",
			Help: "Print version and exit",
			Fun:  printVersion,
		}},
	}

	args := os.Args
	args[0] = tree.Name
	tree.Execute(args)
}

func printVersion([]string) {
	fmt.Fprintln(os.Stderr, "ribd: standalone NDN Routing Information Base daemon")
	fmt.Fprintln(os.Stderr, "Version: "+Version+" (Built "+BuildTime+")")
	fmt.Fprintln(os.Stderr, "Released under the terms of the MIT License")
}

// Run starts the RIB daemon. args[0] is the dispatch path ("ribd run");
// args[1:] holds the options followed by the config file.
func Run(args []string) {
	flagset := flag.NewFlagSet(args[0], flag.ExitOnError)
	flagset.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <config-file>\n", args[0])
		flagset.PrintDefaults()
	}

	var profile executor.ProfileConfig
	flagset.StringVar(&profile.CpuProfile, "cpu-profile", "", "Enable CPU profiling (output to specified file)")
	flagset.StringVar(&profile.MemProfile, "mem-profile", "", "Enable memory profiling (output to specified file)")
	flagset.StringVar(&profile.BlockProfile, "block-profile", "", "Enable block profiling (output to specified file)")

	flagset.Parse(args[1:])

	configFile := flagset.Arg(0)
	if configFile == "" {
		flagset.Usage()
		os.Exit(3)
	}

	core.Version = Version
	core.BuildTime = BuildTime
	core.StartTimestamp = time.Now()

	core.LoadConfig(configFile)
	core.InitializeLogger()

	prof := executor.NewProfiler(profile)
	if err := prof.Start(); err != nil {
		core.LogFatal("Main", "Unable to start profiler: "+err.Error())
	}
	defer prof.Stop()

	core.LogInfo("Main", "Starting ribd")

	rib := table.NewRib(nil)
	rib.SetFibUpdater(table.NewInheritingFibUpdater(rib))

	keyChain := readvertise.NewMemoryKeyChain()
	policy := readvertise.NewHostToGatewayPolicy(keyChain)
	announcer := readvertise.NewRefCountingAnnouncer(&logAnnouncer{})
	readvertise.Wire(rib, policy, announcer)

	refreshSection := readvertise.TomlConfigSection{Tree: core.GetConfigSubTree("readvertise")}
	refreshInterval := readvertise.LoadRefreshInterval(refreshSection)
	core.LogInfo("Readvertise", fmt.Sprintf("refresh interval set to %s", refreshInterval))

	events := make(chan func(), 64)
	go runEventLoop(rib, events, refreshInterval)

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt)
	receivedSig := <-sigChannel
	core.LogInfo("Main", "Received signal "+receivedSig.String()+" - exiting")
	core.ShouldQuit = true
}

// runEventLoop is the single goroutine every Rib mutation is serialized
// onto, grounded on fw/thread.go's channel/select pattern but without any
// face I/O: external callers submit work as a func() onto events, one
// ticker drives route expiration polling, and a second - paced by the
// readvertise policy's configured refresh interval - marks when upstream
// registrations are due for a keep-alive.
func runEventLoop(rib *table.Rib, events chan func(), refreshInterval time.Duration) {
	expirationTicker := time.NewTicker(time.Second)
	defer expirationTicker.Stop()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	for !core.ShouldQuit {
		select {
		case work := <-events:
			work()
		case now := <-expirationTicker.C:
			rib.PollExpirations(now)
		case <-refreshTicker.C:
			core.LogDebug("Readvertise", "refresh interval elapsed, upstream registrations due for keep-alive")
		}
	}
}

// logAnnouncer is a minimal readvertise.Announcer that only logs, standing
// in for a real management-protocol client.
type logAnnouncer struct{}

func (logAnnouncer) Announce(action readvertise.ReadvertiseAction) {
	core.LogInfo("Readvertise", "would announce "+action.Prefix.String())
}

func (logAnnouncer) Withdraw(prefix ndn.Name) {
	core.LogInfo("Readvertise", "would withdraw "+prefix.String())
}
