// Package config defines the typed YAML configuration for rule synthesis
// and its documented defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LegacyFallbackRole is the one role that historically carried hardcoded
// restrictions. It is modeled as a pre-populated entry in the default
// restriction table, selected only when the config leaves it unset.
const LegacyFallbackRole = "intern"

// Range is an inclusive numeric expansion range for a base policy.
type Range struct {
	Min  int `yaml:"min"`
	Max  int `yaml:"max"`
	Step int `yaml:"step"`
}

// BasePolicy is a templated policy expanded into concrete rules.
type BasePolicy struct {
	TopicTemplate string             `yaml:"topic_template"`
	ExpandOn      []string           `yaml:"expand_on"`
	Devices       []string           `yaml:"devices"`
	Range         *Range             `yaml:"range"`
	Static        string             `yaml:"static"`
	Dynamic       string             `yaml:"dynamic"`
	Filter        string             `yaml:"filter"`
	Hints         []string           `yaml:"hints"`
	Priority      int                `yaml:"priority"`
	Action        string             `yaml:"action"`
	ActionWeights map[string]float64 `yaml:"action_weights"`
}

// User is one seeded user row.
type User struct {
	UserID   int    `yaml:"userid"`
	ClientID string `yaml:"clientid"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// UserAttribute is one (user, name, value) attribute triple.
type UserAttribute struct {
	UserID int    `yaml:"userid"`
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
}

// Restriction is one role-scoped restriction template. Priority offset is
// either a literal or a lookup into the priority_offsets table.
type Restriction struct {
	TopicTemplate  string `yaml:"topic_template"`
	Action         string `yaml:"action"`
	Offset         int    `yaml:"offset"`
	OffsetName     string `yaml:"offset_name"`
	BuildingSuffix string `yaml:"building_suffix"`
	Floor          string `yaml:"floor"`
}

// Generalization selects how the reducer groups and distributes rules
// when the unique count exceeds the budget.
type Generalization struct {
	GroupBy  string `yaml:"group_by"` // static | hints | device
	Strategy string `yaml:"strategy"` // round_robin | proportional | priority_buckets | default
}

// Config is the full synthesis configuration.
type Config struct {
	Dimensions          map[string][]string      `yaml:"dimensions"`
	Aliases             map[string][]string      `yaml:"aliases"`
	BasePolicies        []BasePolicy             `yaml:"base_policies"`
	Users               []User                   `yaml:"users"`
	UserAttributes      []UserAttribute          `yaml:"user_attributes"`
	RolePriorities      map[string]int           `yaml:"role_priorities"`
	ClearanceMultiplier int                      `yaml:"clearance_multiplier"`
	PriorityOffsets     map[string]int           `yaml:"priority_offsets"`
	RoleRestrictions    map[string][]Restriction `yaml:"role_restrictions"`
	CapabilityDevices   map[string][]string      `yaml:"capability_devices"`
	ActionWeights       map[string]float64       `yaml:"action_weights"`
	Generalization      Generalization           `yaml:"generalization"`
	MaxRules            int                      `yaml:"max_rules"`
	Seed                *int64                   `yaml:"seed"`
}

// DefaultConfig returns the built-in configuration. The legacy fallback
// role's restrictions and the capability device table live here so that
// partial configs inherit the historical behavior.
func DefaultConfig() *Config {
	return &Config{
		Aliases: map[string][]string{
			"buildings": {"b"},
			"floors":    {"fl"},
			"rooms":     {"r"},
			"devices":   {"dev"},
		},
		ClearanceMultiplier: 1,
		RoleRestrictions: map[string][]Restriction{
			LegacyFallbackRole: {
				{TopicTemplate: "{b}/#", Action: "deny", BuildingSuffix: "2"},
				{TopicTemplate: "{b}/{fl}/#", Action: "deny", Floor: "f3"},
			},
		},
		CapabilityDevices: map[string][]string{
			"video":      {"cam"},
			"alarm":      {"proximity"},
			"facilities": {"tstat", "thermostat"},
		},
		Generalization: Generalization{GroupBy: "static", Strategy: "default"},
	}
}

// Load reads and parses a YAML config file. Defaults fill anything the
// file leaves unset; map entries in the file override per key. A read or
// parse failure is an error; the config is the whole input here.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ClearanceMultiplier == 0 {
		cfg.ClearanceMultiplier = 1
	}
	return cfg, nil
}

// DimensionValues returns the configured value list for a dimension.
// An unset dimension expands as a single empty string so that Cartesian
// products always yield at least one combination.
func (c *Config) DimensionValues(name string) []string {
	if vals := c.Dimensions[name]; len(vals) > 0 {
		return vals
	}
	return []string{""}
}

// PlaceholderNames returns the template placeholder names bound to a
// dimension, defaulting to the dimension name itself.
func (c *Config) PlaceholderNames(name string) []string {
	if names := c.Aliases[name]; len(names) > 0 {
		return names
	}
	return []string{name}
}

// RolePriority returns the base priority for a role, default 1.
func (c *Config) RolePriority(role string) int {
	if p, ok := c.RolePriorities[role]; ok {
		return p
	}
	return 1
}

// RestrictionOffset resolves a restriction's priority offset: a named
// lookup when set, otherwise the literal value. Unknown names are 0.
func (c *Config) RestrictionOffset(r Restriction) int {
	if r.OffsetName != "" {
		return c.PriorityOffsets[r.OffsetName]
	}
	return r.Offset
}
