// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package topology_info

import "testing"

func TestNewRejectsInvalidCaps(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for empty rack_cap")
	}
	if _, err := New([]int{4, 0, 6}); err == nil {
		t.Fatalf("expected error for non-positive rack size")
	}
}

func TestRackLayout(t *testing.T) {
	topo, err := New([]int{4, 6, 6, 6})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got := topo.NumRacks(); got != 4 {
		t.Fatalf("NumRacks() = %d, want 4", got)
	}
	if got := topo.NumMachines(); got != 22 {
		t.Fatalf("NumMachines() = %d, want 22", got)
	}
	if got := topo.MaxPerRack(); got != 6 {
		t.Fatalf("MaxPerRack() = %d, want 6", got)
	}

	wantStart := []int{0, 4, 10, 16}
	for rack, want := range wantStart {
		if got := topo.RackStart(rack); got != want {
			t.Errorf("RackStart(%d) = %d, want %d", rack, got, want)
		}
	}

	for id := 0; id < topo.NumMachines(); id++ {
		rack := topo.RackOf(id)
		start, size := topo.RackStart(rack), topo.RackSize(rack)
		if id < start || id >= start+size {
			t.Errorf("RackOf(%d) = %d, outside [%d, %d)", id, rack, start, start+size)
		}
	}
}
