// Package scripting runs caller-supplied JavaScript inside the layout
// pipeline. Its main use is scripted page hooks: a script defines
// onPage(pageNumber) and whatever it returns is drawn as a running header on
// each new page.
package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/wudi/textflow/builder"
	"github.com/wudi/textflow/flow"
)

// Engine represents a scripting engine.
type Engine interface {
	// Execute executes a script and returns its exported result.
	Execute(ctx context.Context, script string) (interface{}, error)
}

// GojaEngine executes JavaScript with goja. It is not safe for concurrent
// use, matching the single-writer model of the flow engine.
type GojaEngine struct {
	vm *goja.Runtime
}

// NewEngine constructs a GojaEngine.
func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

// Execute runs a script, interrupting it if ctx is cancelled.
func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

// HeaderSize is the text size used for scripted running headers.
const HeaderSize = 9.0

// PageHook compiles script, which must define onPage(pageNumber), and adapts
// it into a flow page hook. A non-empty string returned by onPage is drawn at
// the top of the new page; the cursor is restored afterwards. Script errors
// propagate like any other page-hook failure.
func PageHook(eng *GojaEngine, script string) (flow.PageFunc, error) {
	if _, err := eng.vm.RunString(script); err != nil {
		return nil, fmt.Errorf("scripting: compile page hook: %w", err)
	}
	fn, ok := goja.AssertFunction(eng.vm.Get("onPage"))
	if !ok {
		return nil, fmt.Errorf("scripting: page hook script must define onPage(pageNumber)")
	}
	return func(ctx context.Context, e *flow.Engine, pageNumber int) error {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		val, err := fn(goja.Undefined(), eng.vm.ToValue(pageNumber))
		if err != nil {
			return fmt.Errorf("scripting: onPage(%d): %w", pageNumber, err)
		}
		if goja.IsUndefined(val) || goja.IsNull(val) {
			return nil
		}
		header := val.String()
		if header == "" {
			return nil
		}
		page := e.Page()
		m := e.Margins()
		x, y := page.X(), page.Y()
		page.MoveTo(m.Left, page.Height()-m.Top/2)
		page.DrawText(header, builder.TextOptions{X: m.Left, Size: HeaderSize})
		page.MoveTo(x, y)
		return nil
	}, nil
}
