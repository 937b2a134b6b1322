package server

import (
	"fmt"

	"github.com/chazu/mosaic/world"
)

// worldRequest represents a unit of work to be executed on the world goroutine.
type worldRequest struct {
	fn   func(*world.World) interface{}
	done chan worldResult
}

// worldResult holds the return value from a world operation.
type worldResult struct {
	value interface{}
	err   error
}

// WorldWorker serializes all world access through a single goroutine.
// The runtime is single-threaded; all handlers must go through the
// worker to avoid data races.
type WorldWorker struct {
	world    *world.World
	requests chan worldRequest
	quit     chan struct{}
}

// NewWorldWorker creates a WorldWorker and starts the processing goroutine.
func NewWorldWorker(w *world.World) *WorldWorker {
	ww := &WorldWorker{
		world:    w,
		requests: make(chan worldRequest, 64),
		quit:     make(chan struct{}),
	}
	go ww.loop()
	return ww
}

// loop processes world requests sequentially on a dedicated goroutine.
func (ww *WorldWorker) loop() {
	for {
		select {
		case req := <-ww.requests:
			result := ww.execute(req.fn)
			req.done <- result
		case <-ww.quit:
			return
		}
	}
}

// execute runs a function on the world, recovering from panics.
func (ww *WorldWorker) execute(fn func(*world.World) interface{}) worldResult {
	var result worldResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn(ww.world)
	}()
	return result
}

// Do submits a function for execution on the world goroutine and blocks
// until it completes. Returns the result and any error (including panics).
func (ww *WorldWorker) Do(fn func(*world.World) interface{}) (interface{}, error) {
	req := worldRequest{
		fn:   fn,
		done: make(chan worldResult, 1),
	}
	ww.requests <- req
	result := <-req.done
	return result.value, result.err
}

// Swap replaces the worker's world. The build function runs on the
// worker goroutine, so in-flight requests never observe a half-built
// world. On error the old world stays in place.
func (ww *WorldWorker) Swap(build func(old *world.World) (*world.World, error)) error {
	result, err := ww.Do(func(old *world.World) interface{} {
		fresh, err := build(old)
		if err != nil {
			return err
		}
		ww.world = fresh
		return nil
	})
	if err != nil {
		return err
	}
	if swapErr, ok := result.(error); ok {
		return swapErr
	}
	return nil
}

// Stop shuts down the worker goroutine.
func (ww *WorldWorker) Stop() {
	close(ww.quit)
}

// World returns the underlying world (for read-only metadata access
// that doesn't touch runtime state, like the symbol table).
func (ww *WorldWorker) World() *world.World {
	return ww.world
}
