package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/browser"
)

// fakeDriver serves one canned Eval result (or error) per strategy, in
// chain order.
type fakeDriver struct {
	results [][]string
	errs    []error
	calls   int
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error { return nil }
func (f *fakeDriver) WaitAny(ctx context.Context, sels []string, timeout time.Duration) bool {
	return true
}
func (f *fakeDriver) Click(ctx context.Context, sel string, mode browser.ClickMode) error { return nil }
func (f *fakeDriver) ScrollIntoView(ctx context.Context, sel string) error                { return nil }

func (f *fakeDriver) Eval(ctx context.Context, js string, out any) error {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return f.errs[i]
	}
	strs := out.(*[]string)
	if i < len(f.results) {
		*strs = f.results[i]
	}
	return nil
}

func newTestChain() *Chain {
	return NewChain(DefaultHeuristics(), zap.NewNop())
}

func TestChainFirstStrategyWins(t *testing.T) {
	d := &fakeDriver{results: [][]string{
		{"123 Main St, Springfield, IL 62704"},
	}}

	addr, ok := newTestChain().Extract(context.Background(), d)
	require.True(t, ok)
	assert.Equal(t, "123 Main St, Springfield, IL 62704", addr)
	assert.Equal(t, 1, d.calls)
}

func TestChainFallsThroughOnIncomplete(t *testing.T) {
	d := &fakeDriver{results: [][]string{
		{"804 N State Rd 7"}, // street-only fragment, rejected
		{"Address: 500 Pine Ave, Portland, OR 97201"},
	}}

	addr, ok := newTestChain().Extract(context.Background(), d)
	require.True(t, ok)
	assert.Equal(t, "500 Pine Ave, Portland, OR 97201", addr)
	assert.Equal(t, 2, d.calls)
}

func TestChainFallsThroughOnEvalError(t *testing.T) {
	d := &fakeDriver{
		errs: []error{errors.New("node detached"), nil},
		results: [][]string{
			nil,
			{"Located at 500 Pine Ave, Portland, OR 97201"},
		},
	}

	addr, ok := newTestChain().Extract(context.Background(), d)
	require.True(t, ok)
	assert.Equal(t, "500 Pine Ave, Portland, OR 97201", addr)
}

func TestChainExhausted(t *testing.T) {
	d := &fakeDriver{results: [][]string{
		{"804 N State Rd 7"},
		{"Address"},
		{""},
	}}

	addr, ok := newTestChain().Extract(context.Background(), d)
	assert.False(t, ok)
	assert.Empty(t, addr)
	assert.Equal(t, 3, d.calls)
}

func TestChainStripsAddressPrefixFromPlaceCardLabel(t *testing.T) {
	d := &fakeDriver{results: [][]string{
		{"Address: 123 Main St, Springfield, IL 62704"},
	}}

	addr, ok := newTestChain().Extract(context.Background(), d)
	require.True(t, ok)
	assert.Equal(t, "123 Main St, Springfield, IL 62704", addr)
}

func TestStripPrefixes(t *testing.T) {
	prefixes := []string{"Address:", "Address", "Located at"}

	got := stripPrefixes([]string{
		"Address: 123 Main St, Springfield, IL 62704",
		"Located at 500 Pine Ave, Portland, OR 97201",
		"Address short",
	}, prefixes, 20)

	assert.Equal(t, []string{
		"123 Main St, Springfield, IL 62704",
		"500 Pine Ave, Portland, OR 97201",
	}, got)
}
