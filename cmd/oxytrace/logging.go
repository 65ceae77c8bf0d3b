package main

import (
	"github.com/urfave/cli"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
)

var logger = log.New("oxytrace")

// setupLogging applies the configured level, then lets -v and -vv raise it.
func setupLogging(ctx *cli.Context, level string) {
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}
