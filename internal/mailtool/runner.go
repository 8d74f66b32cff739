package mailtool

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Completion reports the end of one worker. Err is nil on exit status 0,
// a *ToolError on any other status, and a wrapped error when the tool could
// not be started. Output is the full stdout either way.
type Completion struct {
	ID      uint64
	Request Request
	Success bool
	Output  string
	Err     error
}

// Runner starts one worker goroutine per request, each wrapping a single
// tool subprocess. Workers never touch caller state: their only outputs
// are the optional log sink and the completions channel.
type Runner struct {
	tool        *Tool
	logger      *logrus.Logger
	completions chan Completion

	mu     sync.Mutex
	nextID uint64
	live   map[uint64]Request
}

// NewRunner creates a runner for tool
func NewRunner(tool *Tool, logger *logrus.Logger) *Runner {
	return &Runner{
		tool:        tool,
		logger:      logger,
		completions: make(chan Completion, 16),
		live:        make(map[uint64]Request),
	}
}

// Completions delivers a Completion for every started request. It must be
// drained by a single coordinating goroutine.
func (r *Runner) Completions() <-chan Completion {
	return r.completions
}

// Start runs req in a new worker. Stdout lines go to sink, which may be nil.
// There is no cancellation: the subprocess always runs to completion.
func (r *Runner) Start(req Request, sink *LogSink) uint64 {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.live[id] = req
	r.mu.Unlock()

	r.logger.WithFields(logrus.Fields{
		"worker": id,
		"args":   req.Args(),
	}).Debug("Starting worker")

	go r.work(id, req, sink)
	return id
}

func (r *Runner) work(id uint64, req Request, sink *LogSink) {
	out, err := r.tool.Stream(context.Background(), sink, req.Args()...)
	if err != nil {
		sink.Append("FAILURE\n")
		r.logger.WithError(err).WithField("worker", id).Warn("Mail tool failed")
	} else {
		sink.Append("SUCCESS\n")
	}

	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()

	r.completions <- Completion{
		ID:      id,
		Request: req,
		Success: err == nil,
		Output:  out,
		Err:     err,
	}
}

// Live returns the number of running workers
func (r *Runner) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

