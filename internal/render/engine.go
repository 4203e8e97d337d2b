// Package render is the boundary to the external render engine. The
// scheduler only ever sees the Engine/Job pair; what actually produces
// pixels lives outside this process.
package render

import (
	"context"
	"log"
	"os/exec"
)

// Job is one in-flight render. Done is closed (after delivering at most one
// error) when the engine finishes or aborts. Cancel is advisory: it asks the
// engine to stop but does not wait for it.
type Job interface {
	Done() <-chan error
	Cancel()
}

// Engine starts renders asynchronously.
type Engine interface {
	Render(scenePath string) (Job, error)
}

// ExecEngine shells out to an external renderer binary, one process per job.
type ExecEngine struct {
	Bin  string
	Args []string // passed before the scene path
	Log  *log.Logger
}

type execJob struct {
	cancel context.CancelFunc
	done   chan error
}

func (j *execJob) Done() <-chan error { return j.done }
func (j *execJob) Cancel()            { j.cancel() }

func (e *ExecEngine) Render(scenePath string) (Job, error) {
	ctx, cancel := context.WithCancel(context.Background())
	args := append(append([]string{}, e.Args...), scenePath)
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, err
	}
	e.Log.Printf("render started: %s (pid %d)", scenePath, cmd.Process.Pid)

	job := &execJob{cancel: cancel, done: make(chan error, 1)}
	go func() {
		defer cancel()
		err := cmd.Wait()
		if err != nil {
			job.done <- err
		}
		close(job.done)
	}()
	return job, nil
}
