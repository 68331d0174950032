// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllocResourcesPostsExpectedBody(t *testing.T) {
	var got allocRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewResourceManagerClient(srv.URL)
	if err := c.AllocResources(7, []int{1, 2, 3}); err != nil {
		t.Fatalf("AllocResources() error = %v", err)
	}
	if got.JobID != 7 {
		t.Fatalf("JobID = %d, want 7", got.JobID)
	}
	if len(got.Machines) != 3 {
		t.Fatalf("Machines = %v, want 3 entries", got.Machines)
	}
}

func TestAllocResourcesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewResourceManagerClient(srv.URL)
	if err := c.AllocResources(1, []int{0}); err == nil {
		t.Fatalf("AllocResources() error = nil, want error for 500 status")
	}
}

func TestAllocResourcesUnreachable(t *testing.T) {
	c := NewResourceManagerClient("http://127.0.0.1:0")
	if err := c.AllocResources(1, []int{0}); err == nil {
		t.Fatalf("AllocResources() error = nil, want error for unreachable address")
	}
}
