package rwlock

import "time"

type Option interface {
	do(*options)
}

type optionFunc func(*options)

func (f optionFunc) do(o *options) {
	f(o)
}

type options struct {
	timeout    time.Duration
	hasTimeout bool
	onTimeout  func()
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt.do(&o)
	}

	return o
}

// WithTimeout gives up on the acquisition if it has not been granted within d.
// A zero d expires on the next loop turn, so only an immediate grant succeeds.
//
// Without WithTimeoutCallback the request expires silently: the acquisition
// callback is simply never invoked.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.timeout = d
		o.hasTimeout = true
	})
}

// WithTimeoutCallback sets the function invoked when the timeout expires
// before the lock could be granted. It is never invoked for a granted request.
func WithTimeoutCallback(f func()) Option {
	return optionFunc(func(o *options) {
		o.onTimeout = f
	})
}
