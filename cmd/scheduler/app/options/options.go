// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package options

import (
	"github.com/spf13/pflag"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/log"
)

const (
	defaultListenAddress       = ":9091"
	defaultResourceManagerAddr = "http://localhost:9090/alloc"
	defaultVerbosityLevel      = 0
)

// ServerOption holds the scheduler process's startup configuration.
type ServerOption struct {
	ConfigPath             string
	ListenAddress          string
	ResourceManagerAddress string
	Verbosity              int
}

// NewServerOption returns a ServerOption with no flags applied yet.
func NewServerOption() *ServerOption {
	return &ServerOption{}
}

// AddFlags registers the scheduler's command-line flags on fs.
func (s *ServerOption) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&s.ConfigPath, "config", "c", "", "Path to the rack topology and policy config file; built-in defaults are used if empty")
	fs.StringVar(&s.ListenAddress, "listen-address", defaultListenAddress, "The address to listen on for the scheduler HTTP API")
	fs.StringVar(&s.ResourceManagerAddress, "resource-manager-address", defaultResourceManagerAddr, "The URL of the resource manager's alloc endpoint")
	fs.IntVarP(&s.Verbosity, "v", "v", defaultVerbosityLevel, "Verbosity level")
}

// ValidateOptions parses the flag set and logs the resolved flag values.
func (s *ServerOption) ValidateOptions() error {
	pflag.Parse()
	log.Init(s.Verbosity)
	pflag.VisitAll(func(flag *pflag.Flag) {
		log.InfraLogger.V(1).Infof("FLAG: --%s=%q", flag.Name, flag.Value)
	})
	return nil
}
