// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/spf13/pflag"

	"github.com/linquanchen/tetrischeduler/cmd/scheduler/app"
	"github.com/linquanchen/tetrischeduler/cmd/scheduler/app/options"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/log"
)

func main() {
	opt := options.NewServerOption()
	opt.AddFlags(pflag.CommandLine)
	if err := opt.ValidateOptions(); err != nil {
		log.InfraLogger.Errorf("invalid options: %v", err)
		os.Exit(1)
	}

	if err := app.Run(opt); err != nil {
		log.InfraLogger.Errorf("scheduler exited: %v", err)
		os.Exit(1)
	}
}
