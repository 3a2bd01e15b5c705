// Package testutil provides shared level and config fixtures for tests.
package testutil

import (
	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/resource"
)

// TwoRoomLevel is the canonical test arena: two 10x10 rooms whose centers
// sit 20 units apart, joined by a single door at the midpoint. Any route
// between the rooms has to thread the door opening.
func TwoRoomLevel() *resource.Level {
	return &resource.Level{
		Name: "two-rooms",
		Rooms: []resource.Room{
			{Name: "west", X: 0, Z: 0, Width: 10, Depth: 10},
			{Name: "east", X: 20, Z: 0, Width: 10, Depth: 10},
		},
		Doors: []resource.Door{
			{X: 10, Z: 0, Width: 2},
		},
		Routes: []resource.PatrolRoute{
			{Name: "west-loop", Points: []resource.Point{
				{X: -3, Z: -3}, {X: 3, Z: -3}, {X: 3, Z: 3}, {X: -3, Z: 3},
			}},
		},
		Spawns: []resource.Spawn{
			{X: 0, Z: 0, Route: "west-loop", Weapon: "rifle"},
		},
		Player: resource.Point{X: 20, Z: 0},
	}
}

// OneRoomLevel is a single 20x20 room centered at the origin with an
// optional destructible crate in the middle.
func OneRoomLevel(withCrate bool) *resource.Level {
	lv := &resource.Level{
		Name: "one-room",
		Rooms: []resource.Room{
			{Name: "hall", X: 0, Z: 0, Width: 20, Depth: 20},
		},
		Player: resource.Point{X: 8, Z: 0},
	}
	if withCrate {
		lv.Props = append(lv.Props, resource.Prop{
			ID: "crate-1", Kind: "crate", X: 0, Z: 0, Scale: 1, Destructible: true,
		})
	}
	return lv
}

// NavConfig returns the production nav defaults.
func NavConfig() config.NavConfig {
	return config.NavConfig{
		CellSize:         1.0,
		Padding:          2.0,
		DoorClearance:    0.3,
		MaxSnapCells:     20,
		ArrivalRadius:    0.6,
		RecomputeSeconds: 0.5,
	}
}

// GameConfig returns the production game defaults with a 50ms tick.
func GameConfig() config.GameConfig {
	return config.GameConfig{
		TickMs:         50,
		AgentSpeed:     3.5,
		RespawnCheckS:  5,
		SightRange:     18,
		SightFOVDeg:    150,
		HearingRange:   10,
		AlertRadius:    14,
		RepulsionRange: 2.5,
	}
}

// CombatConfig returns the production combat defaults.
func CombatConfig() config.CombatConfig {
	return config.CombatConfig{
		SightConfirmS:   0.35,
		AlertDurationS:  6.0,
		LoseSightS:      3.0,
		PreferredRange:  8.0,
		RangeBand:       2.0,
		FireIntervalS:   0.9,
		ShootAnimHoldS:  0.25,
		StrafeMinS:      1.0,
		StrafeMaxS:      3.0,
		RetreatSpeed:    0.5,
		RepulsionWeight: 0.6,
		SearchTurnRate:  1.2,
	}
}
