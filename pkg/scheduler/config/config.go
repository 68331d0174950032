// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package config loads the scheduler's topology and policy from a JSON
// file, falling back to the original scheduler's defaults when none is
// given.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/topology_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/policy"
)

// DefaultRackCap is the rack layout used when no config file is given: one
// 4-machine GPU rack followed by three 6-machine MPI racks.
var DefaultRackCap = []int{4, 6, 6, 6}

// DefaultPolicy is the policy used when no config file is given, or its
// simtype field is missing or unrecognized.
const DefaultPolicy = policy.Soft

// fileSchema mirrors the original scheduler's config file: a rack capacity
// array and a policy name.
type fileSchema struct {
	RackCap []int  `json:"rack_cap"`
	SimType string `json:"simtype"`
}

// Config is the scheduler's resolved startup configuration.
type Config struct {
	Topology *topology_info.Topology
	Policy   policy.Policy
}

// Default returns the configuration used when no config file path is
// given.
func Default() (*Config, error) {
	topo, err := topology_info.New(DefaultRackCap)
	if err != nil {
		return nil, fmt.Errorf("config: default topology: %w", err)
	}
	return &Config{Topology: topo, Policy: DefaultPolicy}, nil
}

// Load reads a JSON config file. A missing rack_cap falls back to the
// default layout; a missing or unrecognized simtype falls back to Soft,
// matching the original scheduler's ReadConfigFile behavior.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var raw fileSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	rackCap := raw.RackCap
	if len(rackCap) == 0 {
		rackCap = DefaultRackCap
	}

	topo, err := topology_info.New(rackCap)
	if err != nil {
		return nil, fmt.Errorf("config: rack_cap in %s: %w", path, err)
	}

	return &Config{Topology: topo, Policy: policy.Parse(raw.SimType)}, nil
}
