package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/testutil"
)

func TestAddRemoveAgent(t *testing.T) {
	s := NewSpace(nil, zap.NewNop())
	require.Zero(t, s.AgentCount())

	s.AddAgent("a", 1, 2)
	s.AddAgent("a", 5, 5) // duplicate id is ignored
	s.AddAgent("b", 3, 4)
	assert.Equal(t, 2, s.AgentCount())

	s.RemoveAgent("a")
	s.RemoveAgent("a") // already gone
	assert.Equal(t, 1, s.AgentCount())
}

func TestRemoveProp(t *testing.T) {
	s := NewSpace(testutil.OneRoomLevel(true), zap.NewNop())

	assert.True(t, s.RemoveProp("crate-1"))
	assert.False(t, s.RemoveProp("crate-1"), "second removal reports unknown")
	assert.False(t, s.RemoveProp("never-existed"))
}

func TestRepulsion_PushesApart(t *testing.T) {
	s := NewSpace(nil, zap.NewNop())
	s.AddAgent("left", 0, 0)
	s.AddAgent("right", 1, 0)

	v := s.Repulsion("left", 2.5)
	assert.Negative(t, v.X, "left agent pushed further left")
	assert.InDelta(t, 0.0, v.Z, 1e-9)

	v = s.Repulsion("right", 2.5)
	assert.Positive(t, v.X)
}

func TestRepulsion_OutOfRangeIsZero(t *testing.T) {
	s := NewSpace(nil, zap.NewNop())
	s.AddAgent("a", 0, 0)
	s.AddAgent("b", 10, 0)

	assert.True(t, s.Repulsion("a", 2.5).IsZero())
	assert.True(t, s.Repulsion("unknown", 2.5).IsZero())
	assert.True(t, s.Repulsion("a", 0).IsZero())
}

func TestRepulsion_FalloffWithDistance(t *testing.T) {
	s := NewSpace(nil, zap.NewNop())
	s.AddAgent("a", 0, 0)
	s.AddAgent("near", 0.5, 0)

	strong := s.Repulsion("a", 2.5).Len()

	s.RemoveAgent("near")
	s.AddAgent("far", 2.0, 0)
	weak := s.Repulsion("a", 2.5).Len()

	assert.Greater(t, strong, weak)
}

func TestRepulsion_OverlappingAgents(t *testing.T) {
	s := NewSpace(nil, zap.NewNop())
	s.AddAgent("a", 3, 3)
	s.AddAgent("b", 3, 3)

	v := s.Repulsion("a", 2.5)
	assert.False(t, v.IsZero(), "exact overlap must still separate")
}

func TestSyncBodyAndStep(t *testing.T) {
	s := NewSpace(testutil.OneRoomLevel(true), zap.NewNop())
	s.AddAgent("a", -5, 0)
	s.SyncBody("a", -4, 1)
	s.SyncBody("ghost", 0, 0) // unknown id is a no-op
	s.Step(0.05)

	// Position survives the step; the body is kinematic.
	v := s.Repulsion("a", 2.5)
	assert.True(t, v.IsZero())
}
