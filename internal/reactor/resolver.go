package reactor

import (
	"context"
	"net"
	"sync"
	"time"
)

// LookupFunc resolves a host name to addresses. The default is the
// system resolver; tests substitute their own.
type LookupFunc func(ctx context.Context, name string) ([]string, error)

// Resolver performs name resolution off the loop goroutine and
// reports completion by posting a wake event. Tasks hold a Resolver
// as their opaque resolution handle.
type Resolver struct {
	lookup LookupFunc
}

// NewResolver creates a resolver backed by the system resolver.
func NewResolver() *Resolver {
	return &Resolver{
		lookup: func(ctx context.Context, name string) ([]string, error) {
			return net.DefaultResolver.LookupHost(ctx, name)
		},
	}
}

// NewResolverFunc creates a resolver backed by a custom lookup.
func NewResolverFunc(lookup LookupFunc) *Resolver {
	return &Resolver{lookup: lookup}
}

// Start begins resolving name with the given timeout. The returned
// Resolution completes asynchronously; wake is posted exactly once
// when it does.
func (r *Resolver) Start(name string, timeout time.Duration, wake *Event) *Resolution {
	res := &Resolution{}
	go func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		addrs, err := r.lookup(ctx, name)

		res.mu.Lock()
		res.done = true
		res.addrs = addrs
		res.err = err
		res.mu.Unlock()

		wake.Post()
	}()
	return res
}

// Resolution is an in-flight name resolution.
type Resolution struct {
	mu    sync.Mutex
	done  bool
	addrs []string
	err   error
}

// Done reports whether the resolution has completed.
func (r *Resolution) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Result returns the resolved addresses or the lookup error. Only
// meaningful once Done reports true.
func (r *Resolution) Result() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addrs, r.err
}
