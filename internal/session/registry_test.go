package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetSetClear(t *testing.T) {
	r := NewRegistry()

	assert.Nil(t, r.Get(1, FlowTask))

	r.Set(1, FlowTask, &Session{Phase: PhaseCollecting})
	require.NotNil(t, r.Get(1, FlowTask))
	assert.Equal(t, PhaseCollecting, r.Get(1, FlowTask).Phase)

	r.Clear(1, FlowTask)
	assert.Nil(t, r.Get(1, FlowTask))
}

func TestRegistryIsolatesFlowsAndUsers(t *testing.T) {
	r := NewRegistry()

	r.Set(1, FlowTask, &Session{Phase: PhaseCollecting})
	r.Set(1, FlowBug, &Session{Phase: PhasePreview})

	assert.Equal(t, PhaseCollecting, r.Get(1, FlowTask).Phase)
	assert.Equal(t, PhasePreview, r.Get(1, FlowBug).Phase)
	assert.Nil(t, r.Get(2, FlowTask))

	r.Clear(1, FlowTask)
	assert.NotNil(t, r.Get(1, FlowBug))
}

func TestRegistryLastStartWins(t *testing.T) {
	r := NewRegistry()

	r.Set(1, FlowBug, &Session{Phase: PhasePreview, Answers: []string{"old"}})
	r.Set(1, FlowBug, &Session{Phase: PhaseCollecting})

	s := r.Get(1, FlowBug)
	require.NotNil(t, s)
	assert.Equal(t, PhaseCollecting, s.Phase)
	assert.Empty(t, s.Answers)
}

func TestRegistryActive(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Active(1)
	assert.False(t, ok)

	r.Set(1, FlowApplication, &Session{Phase: PhaseCollecting})
	flow, ok := r.Active(1)
	require.True(t, ok)
	assert.Equal(t, FlowApplication, flow)

	// task стоит раньше в порядке обхода
	r.Set(1, FlowTask, &Session{Phase: PhaseCollecting})
	flow, ok = r.Active(1)
	require.True(t, ok)
	assert.Equal(t, FlowTask, flow)
}
