package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionInitErrorUnwraps(t *testing.T) {
	cause := errors.New("chrome not found")
	err := &SessionInitError{Err: cause}

	assert.Contains(t, err.Error(), "session init")
	assert.ErrorIs(t, err, cause)
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession(Config{}, nil)
	assert.Equal(t, 20*time.Second, s.cfg.PageLoadTimeout)
	assert.NotNil(t, s.log)
}

func TestUnstartedSessionRejectsCalls(t *testing.T) {
	s := NewSession(Config{}, zap.NewNop())
	ctx := context.Background()

	require.Error(t, s.Navigate(ctx, "https://example.com"))
	require.Error(t, s.Eval(ctx, "1", nil))
	require.Error(t, s.Click(ctx, "a", ClickNative))
	require.Error(t, s.ScrollIntoView(ctx, "a"))
	assert.False(t, s.WaitAny(ctx, []string{"a"}, time.Millisecond))
}

func TestStopOnUnstartedSessionIsSafe(t *testing.T) {
	s := NewSession(Config{}, zap.NewNop())
	s.Stop()
	s.Stop()
}

func TestSelectorProbeDisjunction(t *testing.T) {
	assert.Equal(t, `!!document.querySelector("div[role=\"feed\"]")`, selectorProbe(`div[role="feed"]`))
}

func TestClickLadderOrder(t *testing.T) {
	assert.Equal(t, []ClickMode{ClickNative, ClickScript, ClickPointer}, ClickLadder)
}
