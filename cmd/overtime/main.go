// Package main is the entry point for the overtime CLI.
package main

import (
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/cmd"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/contract"
	"github.com/rageagainstthemanchine/Overtime-Orchestrator/internal/fetchcache"
)

func main() {
	defer fetchcache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Cannot run command", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogFatal("Cannot stop profiling", err)
	}
}
