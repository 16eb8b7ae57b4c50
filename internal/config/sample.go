package config

import (
	"fmt"

	"github.com/google/uuid"
)

// SampleYAML returns a commented starter config for init-config. Client
// ids are minted fresh so two generated configs never collide when their
// output scripts are loaded into the same broker's auth database.
func SampleYAML() string {
	return fmt.Sprintf(`# abacgen synthesis configuration
# Generated by: abacgen init-config
#
# Pipeline: base_policies + user_attributes -> raw rules -> dedup ->
# (if unique count > max_rules) generalization + backfill -> SQL script.

# Dimension value lists. A dimension left empty expands as a single
# empty segment, which normalization then drops.
dimensions:
  buildings: [b1, b2]
  floors: [f1, f2, f3]
  rooms: [r1, r2]

# Canonical dimension name -> template placeholder names. One configured
# dimension can satisfy several placeholders.
aliases:
  buildings: [b]
  floors: [fl]
  rooms: [r]
  devices: [dev]

# Templated policies expanded over expand_on dimensions (and the policy's
# device list). {v} / {v_plus} in predicates expand over range steps.
base_policies:
  - topic_template: "{b}/{fl}/{r}/{dev}/#"
    expand_on: [buildings, floors, rooms]
    devices: [cam]
    static: ""
    hints: [subj]
    priority: 3
    action: grant
  - topic_template: "alerts/#"
    range: {min: 0, max: 2, step: 1}
    static: "ctx.level=={v}"
    hints: [ctx]
    priority: 4
    action: filter

users:
  - {userid: 1, clientid: %s, username: alice, password: alice-pw}
  - {userid: 2, clientid: %s, username: bob, password: bob-pw}

# (userid, name, value) triples. Values of the form "?true" mark boolean
# capabilities; "role" and "clearance" feed restriction priorities.
user_attributes:
  - {userid: 1, name: role, value: engineer}
  - {userid: 1, name: video, value: "?true"}
  - {userid: 2, name: role, value: intern}
  - {userid: 2, name: clearance, value: "1"}

# Role -> base priority (default 1 when unset).
role_priorities:
  engineer: 3

clearance_multiplier: 1

# Named priority offsets referenced by restrictions via offset_name.
priority_offsets:
  perimeter: 2

# Role -> restriction templates. "intern" has a built-in default table
# (building-suffix "2" deny plus a fixed f3 deny); configuring it here
# replaces that default.
role_restrictions: {}

# Attribute name -> device types granted by a "?true" capability.
capability_devices:
  video: [cam]
  alarm: [proximity]
  facilities: [tstat, thermostat]

# Global action weights. Non-positive weights are excluded from sampling;
# an empty table means every rule keeps its fixed action.
action_weights: {}

# Reducer settings, used only when unique rules exceed max_rules.
#   group_by:  static | hints | device
#   strategy:  round_robin | proportional | priority_buckets | default
generalization:
  group_by: static
  strategy: default

# Rule budget. 0 means unlimited (generalization and backfill skipped).
max_rules: 0

# Seed for reproducible output. Remove for a time-based seed.
seed: 42
`, uuid.NewString(), uuid.NewString())
}
