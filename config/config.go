package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Security  SecurityConfig  `mapstructure:"security"`
	Combat    CombatConfig    `mapstructure:"combat"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Scenario  ScenarioConfig  `mapstructure:"scenario"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

type CacheConfig struct {
	RedisAddr       string        `mapstructure:"redis_addr"` // empty = in-process cache
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalGCInterval time.Duration `mapstructure:"local_gc_interval"`
	LocalPubSubBuf  int           `mapstructure:"local_pubsub_buf"`
	SnapshotTTLS    int           `mapstructure:"snapshot_ttl_s"`
}

type SecurityConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	// AllowedOrigins lists the WebSocket/SSE origins that are permitted.
	// An empty slice allows all origins (useful for local development only).
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CombatConfig holds the turn and sight tunables.
type CombatConfig struct {
	TurnDurationS    int     `mapstructure:"turn_duration_s"` // in-game seconds per side switch
	AutoEndTurns     int     `mapstructure:"auto_end_turns"`
	SightRadiusLocal int     `mapstructure:"sight_radius_local"`
	SightRadiusWorld int     `mapstructure:"sight_radius_world"`
	RaysPC           int     `mapstructure:"rays_pc"`
	RaysNPC          int     `mapstructure:"rays_npc"`
	ConeAngle        float64 `mapstructure:"cone_angle"`
	TickMs           int     `mapstructure:"tick_ms"`
	APCostMove       int     `mapstructure:"ap_cost_move"`
	APCostAttack     int     `mapstructure:"ap_cost_attack"`
	AIStepS          float64 `mapstructure:"ai_step_s"`
	StepTweenS       float64 `mapstructure:"step_tween_s"`
	PlacementRadius  int     `mapstructure:"placement_radius"`
	PlacementTweenS  float64 `mapstructure:"placement_tween_s"`
}

// Tick is the simulation tick interval.
func (c CombatConfig) Tick() time.Duration { return time.Duration(c.TickMs) * time.Millisecond }

type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"` // host:port of the OTLP/HTTP collector
	Insecure    bool   `mapstructure:"insecure"`
}

// ScenarioConfig describes the map and cast the server starts with. An
// empty layout means the built-in arena.
type ScenarioConfig struct {
	MapID        string          `mapstructure:"map_id"`
	Isometric    bool            `mapstructure:"isometric"`
	CombatMap    bool            `mapstructure:"combat_map"`
	WorldMap     bool            `mapstructure:"world_map"`
	Layout       []string        `mapstructure:"layout"`
	Leader       string          `mapstructure:"leader"`
	StartSeconds int64           `mapstructure:"start_seconds"`
	Characters   []CharacterSpec `mapstructure:"characters"`
}

type CharacterSpec struct {
	ID              string `mapstructure:"id"`
	Name            string `mapstructure:"name"`
	Faction         string `mapstructure:"faction"` // player | hostile | neutral
	X               int    `mapstructure:"x"`
	Y               int    `mapstructure:"y"`
	Level           int    `mapstructure:"level"`
	ExperienceValue int    `mapstructure:"experience_value"`
	MaxAP           int    `mapstructure:"max_ap"`
	MaxHP           int    `mapstructure:"max_hp"`
	Attack          int    `mapstructure:"attack"`
	AttackRange     int    `mapstructure:"attack_range"`
	Asleep          bool   `mapstructure:"asleep"`
	Invisible       bool   `mapstructure:"invisible"`
}

// Load reads config from the given YAML file path. An empty path yields
// the defaults. Any key can be overridden from the environment as
// TILECOMBAT_<SECTION>_<KEY>, e.g. TILECOMBAT_COMBAT_AUTO_END_TURNS.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tilecombat")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)
	v.SetDefault("database.mode", "sqlite")
	v.SetDefault("database.sqlite_path", "./data/combat.db")
	v.SetDefault("database.mysql_max_open", 50)
	v.SetDefault("database.mysql_max_idle", 10)
	v.SetDefault("database.mysql_max_life", "1h")
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.local_gc_interval", "30s")
	v.SetDefault("cache.local_pubsub_buf", 256)
	v.SetDefault("cache.snapshot_ttl_s", 60)
	v.SetDefault("security.rate_limit_rps", 20)
	v.SetDefault("security.rate_limit_burst", 40)
	v.SetDefault("combat.turn_duration_s", 6)
	v.SetDefault("combat.auto_end_turns", 2)
	v.SetDefault("combat.sight_radius_local", 10)
	v.SetDefault("combat.sight_radius_world", 5)
	v.SetDefault("combat.rays_pc", 360)
	v.SetDefault("combat.rays_npc", 100)
	v.SetDefault("combat.cone_angle", 0)
	v.SetDefault("combat.tick_ms", 50)
	v.SetDefault("combat.ap_cost_move", 2)
	v.SetDefault("combat.ap_cost_attack", 4)
	v.SetDefault("combat.ai_step_s", 0.25)
	v.SetDefault("combat.step_tween_s", 0.2)
	v.SetDefault("combat.placement_radius", 3)
	v.SetDefault("combat.placement_tween_s", 0.5)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "tilecombat")
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("scenario.map_id", "arena")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if cfg.Combat.TickMs <= 0 {
		return nil, fmt.Errorf("config: combat.tick_ms must be positive, got %d", cfg.Combat.TickMs)
	}
	return cfg, nil
}
