// Copyright 2025 NVIDIA CORPORATION
// SPDX-License-Identifier: Apache-2.0

// Package transport exposes the scheduler's inbound HTTP API and the
// outbound client used to notify the resource manager of placements.
//
// Handler state is touched by exactly one goroutine: the worker loop
// started by Server.Run. Every HTTP handler enqueues a closure on a
// command channel rather than calling the Handler directly, so concurrent
// requests never race on scheduler state.
package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linquanchen/tetrischeduler/pkg/scheduler/api/job_info"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/handler"
	"github.com/linquanchen/tetrischeduler/pkg/scheduler/log"
)

// AddJobRequest is the JSON body of POST /jobs. ID and the durations
// deliberately have no binding:"required" tag: job id 0 is a legal
// caller-assigned id, and a non-positive duration must still reach AddJob
// so it can be logged and enqueued rather than rejected at the transport.
type AddJobRequest struct {
	ID           int32   `json:"id"`
	Type         string  `json:"type" binding:"required"`
	K            int     `json:"k" binding:"required"`
	Priority     int32   `json:"priority"`
	DurationFast float64 `json:"duration_fast"`
	DurationSlow float64 `json:"duration_slow"`
}

// FreeRequest is the JSON body of POST /free.
type FreeRequest struct {
	Machines []int `json:"machines" binding:"required"`
}

// Server wires the Handler to a gin engine through a single worker
// goroutine, so Handler methods are never called concurrently.
type Server struct {
	engine *gin.Engine
	cmds   chan func()
}

// NewServer builds a Server around h. Call Run to start the worker
// goroutine before serving requests.
func NewServer(h *handler.Handler) *Server {
	s := &Server{
		engine: gin.New(),
		cmds:   make(chan func(), 256),
	}
	s.engine.Use(gin.Recovery())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.engine.POST("/jobs", func(c *gin.Context) {
		var req AddJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		jobType, err := parseJobType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		done := make(chan struct{})
		s.cmds <- func() {
			h.AddJob(req.ID, jobType, req.K, req.Priority, req.DurationFast, req.DurationSlow)
			close(done)
		}
		<-done
		c.Status(http.StatusAccepted)
	})

	s.engine.POST("/free", func(c *gin.Context) {
		var req FreeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		done := make(chan struct{})
		s.cmds <- func() {
			h.FreeResources(req.Machines)
			close(done)
		}
		<-done
		c.Status(http.StatusAccepted)
	})

	return s
}

// Run starts the worker goroutine that executes every enqueued command
// against the Handler, one at a time, until Stop closes the command
// channel.
func (s *Server) Run() {
	go func() {
		for cmd := range s.cmds {
			cmd()
		}
	}()
}

// Stop closes the command channel, letting the worker goroutine exit once
// it drains any in-flight commands.
func (s *Server) Stop() {
	close(s.cmds)
}

// ListenAndServe serves the HTTP API on addr. It blocks until the server
// stops or fails.
func (s *Server) ListenAndServe(addr string) error {
	log.InfraLogger.Infof("listening for scheduler API requests on %s", addr)
	return s.engine.Run(addr)
}

func parseJobType(s string) (job_info.Type, error) {
	switch s {
	case "MPI":
		return job_info.MPI, nil
	case "GPU":
		return job_info.GPU, nil
	default:
		return 0, errUnknownJobType(s)
	}
}

type errUnknownJobType string

func (e errUnknownJobType) Error() string {
	return "unknown job type: " + string(e)
}
