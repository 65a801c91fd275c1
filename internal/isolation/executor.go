// Package isolation provides serialization domains: an Executor runs the
// closures handed to it one at a time on a single goroutine, the way an actor
// drains its mailbox.
package isolation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned for work submitted after Close.
var ErrClosed = errors.New("isolation domain closed")

// Executor owns one goroutine and runs submitted closures in mutual
// exclusion. Closures must not submit to the executor that runs them.
type Executor struct {
	name    string
	mailbox chan func()
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewExecutor starts an executor. The mailbox is unbuffered so a closure is
// handed over only when the loop is ready to run it.
func NewExecutor(name string) *Executor {
	e := &Executor{
		name:    name,
		mailbox: make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go e.loop()
	return e
}

// Name identifies the domain in logs.
func (e *Executor) Name() string {
	return e.name
}

// Do runs fn on the executor and waits for it. ctx only bounds the wait for a
// turn; once fn starts it runs to completion. A panic in fn is re-raised in
// the caller.
func (e *Executor) Do(ctx context.Context, fn func()) error {
	var panicked any
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		defer func() { panicked = recover() }()
		fn()
	}

	select {
	case e.mailbox <- job:
	case <-e.quit:
		return ErrClosed
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s: %w", e.name, ctx.Err())
	}

	<-finished
	if panicked != nil {
		panic(panicked)
	}
	return nil
}

// Close stops the loop. Closures already handed over finish first. Safe to
// call more than once.
func (e *Executor) Close() {
	e.once.Do(func() { close(e.quit) })
	<-e.done
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		select {
		case job := <-e.mailbox:
			job()
		case <-e.quit:
			return
		}
	}
}

// Call runs fn on e and returns its results.
func Call[T any](ctx context.Context, e *Executor, fn func() (T, error)) (T, error) {
	var (
		out   T
		fnErr error
	)
	if err := e.Do(ctx, func() { out, fnErr = fn() }); err != nil {
		var zero T
		return zero, err
	}
	return out, fnErr
}
