package nav

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karasuno/gridfire/server/resource"
	"github.com/karasuno/gridfire/server/testutil"
)

func TestMoveDirection_ArrivedReturnsFalse(t *testing.T) {
	g := newTestGrid(t, testutil.TwoRoomLevel())
	f := NewFollower(0.6, 0.5)
	st := &FollowState{}

	dir, moving := f.MoveDirection(g, 3.0, 0, 3.5, 0, st, 0)
	assert.False(t, moving)
	assert.True(t, dir.IsZero())
}

func TestMoveDirection_UnbuiltGridGoesDirect(t *testing.T) {
	f := NewFollower(0.6, 0.5)
	st := &FollowState{}

	dir, moving := f.MoveDirection(NewGrid(nil, testutil.NavConfig()), 0, 0, 10, 0, st, 0)
	require.True(t, moving)
	assert.InDelta(t, 1.0, dir.X, 1e-9)
	assert.InDelta(t, 0.0, dir.Z, 1e-9)
	assert.Nil(t, st.Path, "no path cache without a grid")
}

func TestMoveDirection_RecomputeThrottle(t *testing.T) {
	g := newTestGrid(t, testutil.TwoRoomLevel())
	f := NewFollower(0.6, 0.5)
	st := &FollowState{}

	_, moving := f.MoveDirection(g, 0, 0, 20, 0, st, 1.0)
	require.True(t, moving)
	require.NotNil(t, st.Path)
	assert.Equal(t, 1.0, st.LastRecompute)

	// Inside the window the cached path is reused even as time advances.
	for _, now := range []float64{1.1, 1.25, 1.49} {
		_, moving = f.MoveDirection(g, 0, 0, 20, 0, st, now)
		require.True(t, moving)
		assert.Equal(t, 1.0, st.LastRecompute, "no recompute at t=%v", now)
	}

	// Past the window it recomputes.
	_, moving = f.MoveDirection(g, 0, 0, 20, 0, st, 1.6)
	require.True(t, moving)
	assert.Equal(t, 1.6, st.LastRecompute)
}

func TestMoveDirection_HeadsForCurrentWaypoint(t *testing.T) {
	g := newTestGrid(t, testutil.TwoRoomLevel())
	f := NewFollower(0.6, 0.5)
	st := &FollowState{}

	dir, moving := f.MoveDirection(g, 0, 0, 20, 0, st, 0)
	require.True(t, moving)
	assert.InDelta(t, 1.0, dir.Len(), 1e-9, "direction must be unit length")
	assert.Positive(t, dir.X, "target is due east")
}

func TestMoveDirection_SkipsReachedWaypoints(t *testing.T) {
	g := newTestGrid(t, testutil.TwoRoomLevel())
	f := NewFollower(0.6, 0.5)
	st := &FollowState{}

	_, moving := f.MoveDirection(g, 0, 0, 20, 0, st, 0)
	require.True(t, moving)
	startIdx := st.Index

	// Standing on the first waypoint advances past it on the next call.
	wp := st.Path[startIdx]
	_, moving = f.MoveDirection(g, wp.X, wp.Z, 20, 0, st, 0.1)
	require.True(t, moving)
	assert.Greater(t, st.Index, startIdx)
}

func TestMoveDirection_PastPathEndHeadsToTarget(t *testing.T) {
	g := newTestGrid(t, testutil.TwoRoomLevel())
	f := NewFollower(0.6, 0.5)

	// Standing on the final waypoint with the target still ahead: the
	// follower heads for the true target, which simplification may have
	// dropped from the waypoint list.
	st := &FollowState{
		Path:          []resource.Point{{X: 2.5, Z: 2.5}},
		LastRecompute: 0.2,
	}

	dir, moving := f.MoveDirection(g, 2.5, 2.5, 4.5, 2.5, st, 0.2)
	require.True(t, moving)
	assert.GreaterOrEqual(t, st.Index, len(st.Path))
	assert.InDelta(t, 1.0, dir.X, 1e-9)
	assert.InDelta(t, 0.0, dir.Z, 1e-9)
}

func TestVec2_Normalized(t *testing.T) {
	v := Vec2{X: 3, Z: 4}.Normalized()
	assert.InDelta(t, 1.0, v.Len(), 1e-9)
	assert.True(t, Vec2{}.Normalized().IsZero(), "zero vector stays zero")

	p := Vec2{X: 1, Z: 0}.Perp()
	assert.InDelta(t, 0.0, p.X, 1e-9)
	assert.InDelta(t, 1.0, math.Abs(p.Z), 1e-9)
}
