package service

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Service describes a long-running component of the pubdex application.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until the context gets
	// cancelled or an error occurs.
	Run(context.Context) error
}

// Group is a list of Service instances that execute in parallel.
type Group []Service

// Execute runs every service in the group and blocks until all of them
// have returned. The first service error cancels the rest; the combined
// errors are returned once every service has stopped. A group whose
// services all return cleanly unblocks without waiting on ctx.
func (g Group) Execute(ctx context.Context) error {
	if len(g) == 0 {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(g))

	for _, s := range g {
		go func(s Service) {
			err := s.Run(runCtx)
			if err != nil {
				cancelFn()
			}

			resultChan <- result{name: s.Name(), err: err}
		}(s)
	}

	var err error

	for range g {
		if res := <-resultChan; res.err != nil {
			err = multierror.Append(err, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}

	return err
}
