// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package main is the blkid command.
package main

import (
	"github.com/alecthomas/kong"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siderolabs/go-blkid/debug"
	"github.com/siderolabs/go-blkid/internal/cli"
)

func main() {
	logAtomic := zap.NewAtomicLevel()
	logCfg := zap.NewProductionConfig()
	logCfg.Level = logAtomic
	logCfg.Encoding = "console"
	logCfg.DisableStacktrace = true

	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}

	defer logger.Sync() //nolint:errcheck

	undo := zap.ReplaceGlobals(logger)
	defer undo()

	maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)) //nolint:errcheck

	var c cli.CLI

	ctx := kong.Parse(&c, append([]kong.Option{
		kong.Name("blkid"),
		kong.Description("Locate and print block device attributes"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	}, cli.TypeMappers()...)...)

	var ll zapcore.Level
	if err = ll.Set(c.Globals.LogLevel); err != nil {
		logger.Fatal("invalid log level", zap.String("level", c.Globals.LogLevel), zap.Error(err))
	}

	logAtomic.SetLevel(ll)

	if c.Globals.Debug {
		debug.InitFull()
	} else if err = debug.InitDefault(); err != nil {
		logger.Warn("invalid "+debug.EnvDebug, zap.Error(err))
	}

	if err = ctx.Run(&c.Globals); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
