package animation

import (
	"context"
	"testing"

	"github.com/soyeahso/lively/internal/hooks"
	"github.com/soyeahso/lively/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPoster struct {
	posted []Signal
	full   bool
}

func (r *recordingPoster) Post(sig Signal) bool {
	if r.full {
		return false
	}
	r.posted = append(r.posted, sig)
	return true
}

var defaultTriggers = NewTriggers([]string{"greeting", "인사"}, []string{"farewell", "작별"})

func TestTriggers_Classify(t *testing.T) {
	tests := []struct {
		intent string
		want   Kind
	}{
		{"greeting", KindGreeting},
		{"인사", KindGreeting},
		{"farewell", KindFarewell},
		{"작별", KindFarewell},
		{"감사", KindNone},
		{"", KindNone},
		{"Greeting", KindNone},
	}
	for _, tt := range tests {
		t.Run(tt.intent, func(t *testing.T) {
			assert.Equal(t, tt.want, defaultTriggers.Classify(tt.intent))
		})
	}
}

func TestTriggers_OverlapPrefersGreeting(t *testing.T) {
	tr := NewTriggers([]string{"wave"}, []string{"wave"})
	assert.Equal(t, KindGreeting, tr.Classify("wave"))
}

func TestBridge_Observe(t *testing.T) {
	out := &recordingPoster{}
	b := NewBridge(defaultTriggers, out, logging.New(nil, "silent"))

	assert.True(t, b.Observe("인사"))
	assert.False(t, b.Observe("감사"))
	assert.True(t, b.Observe("작별"))
	assert.True(t, b.Observe("작별"))

	assert.Equal(t, []Signal{SignalStart, SignalStart, SignalStart}, out.posted)
}

func TestBridge_ObserveWhenFull(t *testing.T) {
	out := &recordingPoster{full: true}
	b := NewBridge(defaultTriggers, out, logging.New(nil, "silent"))

	assert.True(t, b.Observe("greeting"))
	assert.Empty(t, out.posted)
}

func TestBridge_Attach(t *testing.T) {
	log := logging.New(nil, "silent")
	hm := hooks.NewManager(log)
	out := &recordingPoster{}
	NewBridge(defaultTriggers, out, log).Attach(hm)

	require.Equal(t, 1, hm.Count(hooks.EventIntentObserved))

	ctx := context.Background()
	hm.Emit(ctx, hooks.EventIntentObserved, map[string]any{"intent": "greeting"})
	hm.Emit(ctx, hooks.EventIntentObserved, map[string]any{"intent": "question"})
	hm.Emit(ctx, hooks.EventIntentObserved, nil)

	assert.Equal(t, []Signal{SignalStart}, out.posted)
}

func TestBridge_AttachTwiceKeepsOneSubscription(t *testing.T) {
	log := logging.New(nil, "silent")
	hm := hooks.NewManager(log)
	out := &recordingPoster{}
	b := NewBridge(defaultTriggers, out, log)
	b.Attach(hm)
	b.Attach(hm)

	require.Equal(t, 1, hm.Count(hooks.EventIntentObserved))
	hm.Emit(context.Background(), hooks.EventIntentObserved, map[string]any{"intent": "인사"})
	assert.Equal(t, []Signal{SignalStart}, out.posted)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "greeting", KindGreeting.String())
	assert.Equal(t, "farewell", KindFarewell.String())
	assert.Equal(t, "none", KindNone.String())
}
