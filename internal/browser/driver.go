// Package browser owns the lifecycle of the remotely-controlled Chrome
// session and exposes the narrow automation surface the pipeline consumes.
package browser

import (
	"context"
	"time"
)

// ClickMode selects one rung of the click fallback ladder.
type ClickMode string

const (
	// ClickNative dispatches a real click through the DevTools protocol.
	ClickNative ClickMode = "native"
	// ClickScript calls element.click() in page JS.
	ClickScript ClickMode = "script"
	// ClickPointer moves the pointer to the element center and clicks.
	ClickPointer ClickMode = "pointer"
)

// ClickLadder is the order click mechanisms are attempted in. The first mode
// that succeeds wins.
var ClickLadder = []ClickMode{ClickNative, ClickScript, ClickPointer}

// Driver is the automation capability consumed by the pipeline. The live
// implementation is Session; tests substitute fakes.
type Driver interface {
	// Navigate loads url in the current tab.
	Navigate(ctx context.Context, url string) error

	// WaitAny blocks until any of the selectors matches an element or the
	// timeout elapses. Returns false on timeout; timeouts are expected and
	// not errors.
	WaitAny(ctx context.Context, selectors []string, timeout time.Duration) bool

	// Eval runs a JS expression in the page and unmarshals the result.
	Eval(ctx context.Context, js string, out any) error

	// Click clicks the first element matching selector using the given mode.
	Click(ctx context.Context, selector string, mode ClickMode) error

	// ScrollIntoView scrolls the first element matching selector into view.
	ScrollIntoView(ctx context.Context, selector string) error
}
