package cron

import (
	"context"
	"fmt"
)

// Job is a unit of periodic work run by the watcher.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds jobs in registration order; names are unique.
type Registry struct {
	jobs  []Job
	names map[string]struct{}
}

// NewRegistry builds a registry from jobs, skipping nils. It panics on a
// duplicate name since that is a wiring bug.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{names: map[string]struct{}{}}
	for _, job := range jobs {
		if err := registry.Register(job); err != nil {
			panic(err)
		}
	}
	return registry
}

func (r *Registry) Register(job Job) error {
	if job == nil {
		return nil
	}
	if _, dup := r.names[job.Name()]; dup {
		return fmt.Errorf("job %q already registered", job.Name())
	}
	r.names[job.Name()] = struct{}{}
	r.jobs = append(r.jobs, job)
	return nil
}

// Jobs returns a copy of the registered jobs.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
