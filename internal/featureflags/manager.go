// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Known flags.
const (
	// DemoTools gates demo generation and store reset.
	DemoTools = "demo_tools"
	// ArchiveEndpoint gates on-demand archiving over HTTP.
	ArchiveEndpoint = "archive_endpoint"
	// ReactionEvents gates pub/sub fan-out, optionally per reacting user.
	ReactionEvents = "reaction_events"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "demo_tools=off,reaction_events=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config
// string layered over defaults. Entries in raw win.
func NewManager(raw string, defaults map[string]string) *Manager {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[normalize(k)] = normalize(v)
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Defaults returns the built-in flag values for an environment. Demo tools
// are off in production unless turned on explicitly.
func Defaults(production bool) map[string]string {
	demo := "on"
	if production {
		demo = "off"
	}
	return map[string]string{
		DemoTools:       demo,
		ArchiveEndpoint: "on",
		ReactionEvents:  "on",
	}
}

// Enabled reports whether a flag is on. Percentage flags are on only for
// their keyed form; see EnabledFor.
func (m *Manager) Enabled(name string) bool {
	return m.EnabledFor(name, 0)
}

// EnabledFor evaluates a flag for one subject id.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by subject, e.g. 25%)
func (m *Manager) EnabledFor(name string, subject uint) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil || pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if subject == 0 {
			return false
		}
		return rolloutBucket(name, subject) < pct
	}

	return false
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, subject uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), subject)))
	return int(h.Sum32() % 100)
}
