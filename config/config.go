package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Level    LevelConfig    `mapstructure:"level"`
	Game     GameConfig     `mapstructure:"game"`
	Nav      NavConfig      `mapstructure:"nav"`
	Combat   CombatConfig   `mapstructure:"combat"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	Debug    bool   `mapstructure:"debug"`
	AdminKey string `mapstructure:"admin_key"`
}

type LevelConfig struct {
	Path  string `mapstructure:"path"`  // path to the level JSON file
	Watch bool   `mapstructure:"watch"` // reload the level when the file changes
}

type GameConfig struct {
	TickMs         int           `mapstructure:"tick_ms"`
	AgentSpeed     float64       `mapstructure:"agent_speed"`
	RespawnCheckS  int           `mapstructure:"respawn_check_s"`
	RespawnDelay   time.Duration `mapstructure:"respawn_delay"`
	SightRange     float64       `mapstructure:"sight_range"`
	SightFOVDeg    float64       `mapstructure:"sight_fov_deg"`
	HearingRange   float64       `mapstructure:"hearing_range"`
	AlertRadius    float64       `mapstructure:"alert_radius"` // alert propagation radius
	RepulsionRange float64       `mapstructure:"repulsion_range"`
}

type NavConfig struct {
	CellSize         float64 `mapstructure:"cell_size"`
	Padding          float64 `mapstructure:"padding"`
	DoorClearance    float64 `mapstructure:"door_clearance"`
	MaxSnapCells     int     `mapstructure:"max_snap_cells"`
	ArrivalRadius    float64 `mapstructure:"arrival_radius"`
	RecomputeSeconds float64 `mapstructure:"recompute_seconds"`
}

type CombatConfig struct {
	SightConfirmS   float64 `mapstructure:"sight_confirm_s"`   // continuous sight needed before attack
	AlertDurationS  float64 `mapstructure:"alert_duration_s"`  // how long an agent keeps searching
	LoseSightS      float64 `mapstructure:"lose_sight_s"`      // grace period before giving up pursuit
	PreferredRange  float64 `mapstructure:"preferred_range"`   // target engagement distance
	RangeBand       float64 `mapstructure:"range_band"`        // half-width of the engagement band
	FireIntervalS   float64 `mapstructure:"fire_interval_s"`   // minimum time between shots
	ShootAnimHoldS  float64 `mapstructure:"shoot_anim_hold_s"` // how long the shoot pose is held
	StrafeMinS      float64 `mapstructure:"strafe_min_s"`      // strafe direction re-pick window
	StrafeMaxS      float64 `mapstructure:"strafe_max_s"`
	RetreatSpeed    float64 `mapstructure:"retreat_speed"`    // speed multiplier while backing off
	RepulsionWeight float64 `mapstructure:"repulsion_weight"` // separation blend on all movement
	SearchTurnRate  float64 `mapstructure:"search_turn_rate"` // rad/s while scanning at a lost position
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Load reads config from the given YAML file path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("level.path", "./data/level.json")
	v.SetDefault("level.watch", false)
	v.SetDefault("game.tick_ms", 50)
	v.SetDefault("game.agent_speed", 3.5)
	v.SetDefault("game.respawn_check_s", 5)
	v.SetDefault("game.respawn_delay", "15s")
	v.SetDefault("game.sight_range", 18)
	v.SetDefault("game.sight_fov_deg", 150)
	v.SetDefault("game.hearing_range", 10)
	v.SetDefault("game.alert_radius", 14)
	v.SetDefault("game.repulsion_range", 2.5)
	v.SetDefault("nav.cell_size", 1.0)
	v.SetDefault("nav.padding", 2.0)
	v.SetDefault("nav.door_clearance", 0.3)
	v.SetDefault("nav.max_snap_cells", 20)
	v.SetDefault("nav.arrival_radius", 0.6)
	v.SetDefault("nav.recompute_seconds", 0.5)
	v.SetDefault("combat.sight_confirm_s", 0.35)
	v.SetDefault("combat.alert_duration_s", 6.0)
	v.SetDefault("combat.lose_sight_s", 3.0)
	v.SetDefault("combat.preferred_range", 8.0)
	v.SetDefault("combat.range_band", 2.0)
	v.SetDefault("combat.fire_interval_s", 0.9)
	v.SetDefault("combat.shoot_anim_hold_s", 0.25)
	v.SetDefault("combat.strafe_min_s", 1.0)
	v.SetDefault("combat.strafe_max_s", 3.0)
	v.SetDefault("combat.retreat_speed", 0.5)
	v.SetDefault("combat.repulsion_weight", 0.6)
	v.SetDefault("combat.search_turn_rate", 1.2)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
