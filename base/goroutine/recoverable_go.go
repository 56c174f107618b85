package goroutine

import (
	"runtime/debug"

	"github.com/x-xyz/salebot/base/log"
)

type PanicEvent struct {
	Panic interface{}
	Stack []byte
}

type RecoverableGoOptions struct {
	logger         log.Logger
	afterRecovered *func(panic interface{}, stack []byte)
}

type RecoverableGoOptionsFunc = func(*RecoverableGoOptions) error

func getRecoverableGoOptions(fns ...RecoverableGoOptionsFunc) RecoverableGoOptions {
	opts := RecoverableGoOptions{logger: log.Log()}
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

// WithLogger reports the panic through logger instead of the global one
func WithLogger(logger log.Logger) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.logger = logger
		return nil
	}
}

func WithAfterRecovered(f func(panic interface{}, stack []byte)) RecoverableGoOptionsFunc {
	return func(options *RecoverableGoOptions) error {
		options.afterRecovered = &f
		return nil
	}
}

// Recover runs f and turns a panic into a PanicEvent, nil means f returned normally
func Recover(f func(), fns ...RecoverableGoOptionsFunc) (event *PanicEvent) {
	opts := getRecoverableGoOptions(fns...)

	defer func() {
		if p := recover(); p != nil {
			stack := debug.Stack()

			opts.logger.WithFields(log.Fields{
				"err":   p,
				"stack": string(stack),
			}).Error("panic")

			if opts.afterRecovered != nil {
				(*opts.afterRecovered)(p, stack)
			}

			event = &PanicEvent{p, stack}
		}
	}()

	f()
	return nil
}

// RecoverableGo runs f in a goroutine, the channel yields the panic or is closed when f returns
func RecoverableGo(f func(), fns ...RecoverableGoOptionsFunc) chan *PanicEvent {
	panicChan := make(chan *PanicEvent, 1)

	go func() {
		if event := Recover(f, fns...); event != nil {
			panicChan <- event
			return
		}
		close(panicChan)
	}()

	return panicChan
}
