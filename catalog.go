package server

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// CommandInfo describes one catalog entry. The wire shape matches the
// commands.json file the server can optionally load at startup.
type CommandInfo struct {
	Description string `json:"description"`
}

// Catalog maps role -> command name -> descriptor. Validity of an issued
// command is an exact-name lookup; the effect a command has is classified
// separately by keyword (see applyEffects).
type Catalog map[Role]map[string]CommandInfo

// DefaultCatalog builds the built-in command set. Names deliberately carry
// the keywords the effect table keys on.
func DefaultCatalog() Catalog {
	return Catalog{
		RoleHacker: {
			"scan_network":      {Description: "Scanning the network... open ports mapped."},
			"brute_force":       {Description: "Brute forcing credentials... root shell acquired."},
			"exfiltrate_data":   {Description: "Exfiltrating records from the target database."},
			"deploy_ransomware": {Description: "Deploying ransomware payload across the system."},
			"spoof_identity":    {Description: "Spoofing identity... audit logs now point elsewhere."},
			"cloak_traffic":     {Description: "Cloaking traffic behind encrypted relays."},
		},
		RoleDefender: {
			"block_ip":        {Description: "Blocking suspicious IP ranges at the perimeter."},
			"raise_firewall":  {Description: "Raising firewall rules... perimeter hardened."},
			"trace_signal":    {Description: "Tracing the intruder's signal back to its origin."},
			"patch_backdoor":  {Description: "Patching the backdoor... integrity restored."},
			"monitor_traffic": {Description: "Monitoring traffic for anomalies."},
		},
	}
}

// LoadCatalog reads a catalog override file in the commands.json shape:
// {"hacker": {"scan_network": {"description": "..."}}, "defender": {...}}.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command catalog: %w", err)
	}
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse command catalog %s: %w", path, err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid command catalog %s: %w", path, err)
	}
	return catalog, nil
}

// Validate checks that both roles are present and non-empty.
func (c Catalog) Validate() error {
	for _, role := range []Role{RoleHacker, RoleDefender} {
		cmds, ok := c[role]
		if !ok || len(cmds) == 0 {
			return fmt.Errorf("catalog has no %s commands", role)
		}
		for name, info := range cmds {
			if name == "" {
				return fmt.Errorf("catalog has an unnamed %s command", role)
			}
			if info.Description == "" {
				return fmt.Errorf("catalog command %q has no description", name)
			}
		}
	}
	return nil
}

// Describe resolves a command issued by role. The lookup is exact.
func (c Catalog) Describe(role Role, name string) (string, bool) {
	info, ok := c[role][name]
	if !ok {
		return "", false
	}
	return info.Description, true
}

// Names returns the role's command names in sorted order so random
// selection is reproducible under a seeded source.
func (c Catalog) Names(role Role) []string {
	names := make([]string, 0, len(c[role]))
	for name := range c[role] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
