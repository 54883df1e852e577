// Package config holds the user tunables, their defaults and ranges, and the
// layered loading of them from file and environment.
package config

import (
	"fmt"
	"math"
)

// Config holds every tunable of the extension.
type Config struct {
	EnableReaperBalance bool `yaml:"enable_reaper_balance" env:"ENABLE"`

	EnableCrossSlash bool    `yaml:"enable_cross_slash" env:"ENABLE_CROSS_SLASH"`
	CrossSlashScale  float64 `yaml:"cross_slash_scale" env:"CROSS_SLASH_SCALE"`
	CrossSlashDamage float64 `yaml:"cross_slash_damage" env:"CROSS_SLASH_DAMAGE"`

	NormalAttackMultiplier float64 `yaml:"normal_attack_multiplier" env:"NORMAL_ATTACK_MULTIPLIER"`
	DownSlashMultiplier    float64 `yaml:"down_slash_multiplier" env:"DOWN_SLASH_MULTIPLIER"`
	StunDamageMultiplier   float64 `yaml:"stun_damage_multiplier" env:"STUN_DAMAGE_MULTIPLIER"`

	EnableSilkAttraction bool    `yaml:"enable_silk_attraction" env:"ENABLE_SILK_ATTRACTION"`
	CollectRange         float64 `yaml:"collect_range" env:"COLLECT_RANGE"`
	CollectMaxSpeed      float64 `yaml:"collect_max_speed" env:"COLLECT_MAX_SPEED"`
	CollectAcceleration  float64 `yaml:"collect_acceleration" env:"COLLECT_ACCELERATION"`

	DurationMultiplier float64 `yaml:"duration_multiplier" env:"DURATION_MULTIPLIER"`

	EnableReaperCrit bool    `yaml:"enable_reaper_crit" env:"ENABLE_CRIT"`
	CritChance       float64 `yaml:"crit_chance_percent" env:"CRIT_CHANCE"`
	CritDamage       float64 `yaml:"crit_damage_multiplier" env:"CRIT_DAMAGE"`

	Policy Policy `yaml:"policy" envPrefix:"POLICY_"`
	Host   Host   `yaml:"host" envPrefix:"HOST_"`
}

// Policy holds the balance numbers the host's formulas are built on.
type Policy struct {
	BaseDamage            float64 `yaml:"base_damage" env:"BASE_DAMAGE"`
	DamagePerUpgrade      float64 `yaml:"damage_per_upgrade" env:"DAMAGE_PER_UPGRADE"`
	VanillaCritMultiplier float64 `yaml:"vanilla_crit_multiplier" env:"VANILLA_CRIT_MULTIPLIER"`

	// ModifierItems maps equipment ids to the damage-over-time ticks they
	// stack onto spawned effects while equipped.
	ModifierItems map[string]int `yaml:"modifier_items" env:"MODIFIER_ITEMS"`
}

// Host names the host objects the extension works with.
type Host struct {
	CrestID       string   `yaml:"crest_id" env:"CREST_ID"`
	TitleScene    string   `yaml:"title_scene" env:"TITLE_SCENE"`
	IgnoredScenes []string `yaml:"ignored_scenes" env:"IGNORED_SCENES"`

	Bundles        []string `yaml:"bundles" env:"BUNDLES"`
	RequiredAssets []string `yaml:"required_assets" env:"REQUIRED_ASSETS"`
}

// Asset names used across the extension.
const (
	CrossSlashSource = "Song Knight CrossSlash Friendly"
	SilkBundle       = "Reaper Silk Bundle"
	CrossSlashEnemy  = "Song Knight CrossSlash"
	CrossSlashPooled = "Song Knight CrossSlash Cached"
)

// Defaults returns the configuration the extension ships with.
func Defaults() Config {
	return Config{
		EnableReaperBalance: true,

		EnableCrossSlash: true,
		CrossSlashScale:  1.2,
		CrossSlashDamage: 2.3,

		NormalAttackMultiplier: 1.2,
		DownSlashMultiplier:    1.5,
		StunDamageMultiplier:   1.2,

		EnableSilkAttraction: true,
		CollectRange:         8,
		CollectMaxSpeed:      20,
		CollectAcceleration:  800,

		DurationMultiplier: 3,

		EnableReaperCrit: false,
		CritChance:       10,
		CritDamage:       3,

		Policy: Policy{
			BaseDamage:            12,
			DamagePerUpgrade:      9,
			VanillaCritMultiplier: 1.5,
			ModifierItems: map[string]int{
				"Poison Pouch": 1,
			},
		},

		Host: Host{
			CrestID:       "Reaper",
			TitleScene:    "Menu_Title",
			IgnoredScenes: []string{"Pre_Menu_Intro"},
			Bundles: []string{
				"localpoolprefabs_assets_laceboss",
				"localpoolprefabs_assets_areasong",
			},
			RequiredAssets: []string{
				CrossSlashSource,
				SilkBundle,
				CrossSlashEnemy,
			},
		},
	}
}

// A Range is the allowed interval of one numeric tunable.
type Range struct {
	Name string
	Min  float64
	Max  float64

	field func(c *Config) *float64
}

// Get returns the value of the tunable in c.
func (r Range) Get(c *Config) float64 {
	return *r.field(c)
}

// Set writes v into c without clamping.
func (r Range) Set(c *Config, v float64) {
	*r.field(c) = v
}

// Ranges lists the numeric tunables with the intervals offered to the user.
func Ranges() []Range {
	return []Range{
		{"cross_slash_scale", 0.5, 3,
			func(c *Config) *float64 { return &c.CrossSlashScale }},
		{"cross_slash_damage", 0.5, 8,
			func(c *Config) *float64 { return &c.CrossSlashDamage }},
		{"normal_attack_multiplier", 0.1, 3,
			func(c *Config) *float64 { return &c.NormalAttackMultiplier }},
		{"down_slash_multiplier", 0.1, 4,
			func(c *Config) *float64 { return &c.DownSlashMultiplier }},
		{"stun_damage_multiplier", 0, 5,
			func(c *Config) *float64 { return &c.StunDamageMultiplier }},
		{"collect_range", 1, 24,
			func(c *Config) *float64 { return &c.CollectRange }},
		{"collect_max_speed", 0, 60,
			func(c *Config) *float64 { return &c.CollectMaxSpeed }},
		{"collect_acceleration", 0, 3000,
			func(c *Config) *float64 { return &c.CollectAcceleration }},
		{"duration_multiplier", 0.2, 10,
			func(c *Config) *float64 { return &c.DurationMultiplier }},
		{"crit_chance_percent", 0, 100,
			func(c *Config) *float64 { return &c.CritChance }},
		{"crit_damage_multiplier", 1, 5,
			func(c *Config) *float64 { return &c.CritDamage }},
	}
}

// Clamp forces every numeric tunable into its range and returns the names of
// the tunables that were changed.
func (c *Config) Clamp() []string {
	var changed []string

	for _, r := range Ranges() {
		v := r.Get(c)
		clamped := math.Min(math.Max(v, r.Min), r.Max)

		if math.IsNaN(v) {
			clamped = r.Min
		}

		if clamped != v {
			r.Set(c, clamped)
			changed = append(changed, r.Name)
		}
	}

	return changed
}

// Validate reports the first tunable outside its range, or a missing host
// name.
func (c *Config) Validate() error {
	for _, r := range Ranges() {
		v := r.Get(c)
		if math.IsNaN(v) || v < r.Min || v > r.Max {
			return fmt.Errorf("%s = %v is outside [%v, %v]",
				r.Name, v, r.Min, r.Max)
		}
	}

	if c.Host.CrestID == "" {
		return fmt.Errorf("host.crest_id must not be empty")
	}

	if c.Host.TitleScene == "" {
		return fmt.Errorf("host.title_scene must not be empty")
	}

	if len(c.Host.RequiredAssets) == 0 {
		return fmt.Errorf("host.required_assets must not be empty")
	}

	for item, ticks := range c.Policy.ModifierItems {
		if ticks < 0 {
			return fmt.Errorf("policy.modifier_items[%s] = %d is negative",
				item, ticks)
		}
	}

	return nil
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := c

	out.Policy.ModifierItems = make(map[string]int, len(c.Policy.ModifierItems))
	for k, v := range c.Policy.ModifierItems {
		out.Policy.ModifierItems[k] = v
	}

	out.Host.IgnoredScenes = append([]string(nil), c.Host.IgnoredScenes...)
	out.Host.Bundles = append([]string(nil), c.Host.Bundles...)
	out.Host.RequiredAssets = append([]string(nil), c.Host.RequiredAssets...)

	return out
}
