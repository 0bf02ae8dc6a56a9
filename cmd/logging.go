package cmd

import (
	"github.com/urfave/cli"

	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/log"
)

// cmdEngine builds the CPU engine a command should run against: a fixed
// pool sized by --workers, or engine.Default() when unset.
func cmdEngine(ctx *cli.Context) engine.Engine {
	if workers := ctx.GlobalInt("workers"); workers > 0 {
		return engine.CPU(workers)
	}
	return engine.Default()
}

// SetupLogging raises the logger's verbosity according to the app-level
// -v/-vv flags. It is wired in as a Before hook on every leaf command.
func SetupLogging(ctx *cli.Context) error {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}
	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
	return nil
}
