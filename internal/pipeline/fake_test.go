package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/address-cli/internal/browser"
	"github.com/sells-group/address-cli/internal/table"
)

// evalResp is one scripted response for fakeDriver.Eval, assigned by the
// out-pointer type.
type evalResp struct {
	strs  []string
	found bool
	err   error
}

// fakeDriver scripts the SessionDriver surface. WaitAny and Eval pop queued
// responses; exhausted queues fall back to defaults.
type fakeDriver struct {
	navs     []string
	waits    []bool
	waitIdx  int
	waitDflt bool
	evals    []evalResp
	evalIdx  int
	clickErr map[browser.ClickMode]error
	clicks   []browser.ClickMode
	scrolls  []string

	restarts   int
	restartErr error
	navErr     error
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.navs = append(f.navs, url)
	return f.navErr
}

func (f *fakeDriver) WaitAny(ctx context.Context, sels []string, timeout time.Duration) bool {
	if f.waitIdx < len(f.waits) {
		v := f.waits[f.waitIdx]
		f.waitIdx++
		return v
	}
	return f.waitDflt
}

func (f *fakeDriver) Eval(ctx context.Context, js string, out any) error {
	var resp evalResp
	if f.evalIdx < len(f.evals) {
		resp = f.evals[f.evalIdx]
		f.evalIdx++
	}
	if resp.err != nil {
		return resp.err
	}
	switch v := out.(type) {
	case *[]string:
		*v = resp.strs
	case *bool:
		*v = resp.found
	}
	return nil
}

func (f *fakeDriver) Click(ctx context.Context, sel string, mode browser.ClickMode) error {
	f.clicks = append(f.clicks, mode)
	if f.clickErr != nil {
		return f.clickErr[mode]
	}
	return nil
}

func (f *fakeDriver) ScrollIntoView(ctx context.Context, sel string) error {
	f.scrolls = append(f.scrolls, sel)
	return nil
}

func (f *fakeDriver) Restart(ctx context.Context) error {
	f.restarts++
	return f.restartErr
}

// fakeSessionControl counts lifecycle calls for controller tests.
type fakeSessionControl struct {
	startErr error
	starts   int
	stops    int
}

func (f *fakeSessionControl) Start(ctx context.Context) error {
	f.starts++
	return f.startErr
}

func (f *fakeSessionControl) Stop() { f.stops++ }

// fakeResolver maps queries to scripted outcomes.
type fakeResolver struct {
	results map[string]fakeResult
	calls   []string
}

type fakeResult struct {
	address string
	lt      string
}

func (f *fakeResolver) Resolve(ctx context.Context, query string) (string, table.LookupType) {
	f.calls = append(f.calls, query)
	if r, ok := f.results[query]; ok {
		return r.address, table.LookupType(r.lt)
	}
	return table.NotFound, table.LookupUnknown
}

// fakePacer counts pauses.
type fakePacer struct {
	pauses int
}

func (f *fakePacer) Pause(ctx context.Context) { f.pauses++ }

var errBoom = errors.New("boom")
