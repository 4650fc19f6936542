// Package hpanic turns panics in worker bodies into errors.
package hpanic

import (
	"fmt"
	"runtime/debug"
)

// Error carries a recovered panic value and the stack it was raised from.
type Error struct {
	Value any
	Stack []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *Error) Unwrap() error {
	err, _ := e.Value.(error)

	return err
}

type Option interface {
	do(*options)
}

type optionFunc func(*options)

func (f optionFunc) do(o *options) {
	f(o)
}

type options struct {
	wrap func(err *Error) error
}

// Wrap lets the caller decorate the recovered error, typically to name the
// worker that panicked.
func Wrap(f func(err *Error) error) Option {
	return optionFunc(func(o *options) {
		o.wrap = f
	})
}

func RecoverV[T any](f func() (T, error), opts ...Option) (_ T, err error) {
	var o options
	for _, opt := range opts {
		opt.do(&o)
	}

	defer func() {
		v := recover()
		if v == nil {
			return
		}

		perr := &Error{Value: v, Stack: debug.Stack()}
		if o.wrap != nil {
			err = o.wrap(perr)
		} else {
			err = perr
		}
	}()

	return f()
}

func Recover(f func() error, opts ...Option) error {
	_, err := RecoverV(func() (struct{}, error) {
		return struct{}{}, f()
	}, opts...)

	return err
}
