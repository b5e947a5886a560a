package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	n := New()
	a := n.Subscribe()
	b := n.Subscribe()
	defer n.Unsubscribe(a)
	defer n.Unsubscribe(b)

	n.Publish(Progress{Phase: PhaseCounting})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, Progress{Phase: PhaseCounting}, <-a)
	assert.Equal(t, Progress{Phase: PhaseCounting}, <-b)
}

func TestPublishNeverBlocks(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	defer n.Unsubscribe(ch)

	// Overfill the buffer; extra events are dropped, not queued.
	for i := 0; i < cap(ch)+5; i++ {
		n.Publish(Progress{Phase: PhaseExecuting})
	}
	assert.Len(t, ch, cap(ch))
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	n := New()
	ch := n.Subscribe()
	n.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	n.Publish(QueryFailed{Message: "x"})
}

func TestPublishOnNilNotifier(t *testing.T) {
	var n *Notifier
	n.Publish(PageReady{Page: 0, Rows: 1})
}
