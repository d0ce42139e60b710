package workgroup

import "sync"

// Group manages a set of goroutines with related lifetimes.
type Group struct {
	fn []func(<-chan struct{}) error
}

// Add adds a function to the Group. Must be called before Run.
func (g *Group) Add(fn func(stop <-chan struct{}) error) {
	g.fn = append(g.fn, fn)
}

// Run executes each function registered with Add in its own goroutine.
// The first function to return closes the stop channel passed to every
// function, each of which should then return. Run blocks until all of them
// have returned and reports the error of the first one.
func (g *Group) Run() error {
	if len(g.fn) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	wg.Add(len(g.fn))

	stop := make(chan struct{})
	result := make(chan error, len(g.fn))
	for _, fn := range g.fn {
		go func(fn func(<-chan struct{}) error) {
			defer wg.Done()
			result <- fn(stop)
		}(fn)
	}

	err := <-result
	close(stop)
	wg.Wait()
	return err
}
