// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package app wires together the scheduler's configuration, handler, and
// transport layers into a runnable server.
package app

import (
	"github.com/linquanchen/tetrischeduler/cmd/scheduler/app/options"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/config"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/handler"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/log"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/transport"
)

// Run loads configuration, builds the handler and HTTP server, and serves
// until the process is terminated.
func Run(opt *options.ServerOption) error {
	log.Init(opt.Verbosity)

	cfg, err := loadConfig(opt.ConfigPath)
	if err != nil {
		return err
	}
	log.InfraLogger.Infof("starting scheduler: %d racks, %d machines, policy=%s",
		cfg.Topology.NumRacks(), cfg.Topology.NumMachines(), cfg.Policy)

	rm := transport.NewResourceManagerClient(opt.ResourceManagerAddress)
	h := handler.New(cfg, rm)

	server := transport.NewServer(h)
	server.Run()
	return server.ListenAndServe(opt.ListenAddress)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}
