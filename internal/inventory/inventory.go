// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/awsctl/awsctl/internal/log"
)

// Host is one inventory member: its name and the describe JSON it was built
// from, plus whatever compose expressions added.
type Host struct {
	Name string                 `json:"name"`
	Vars map[string]interface{} `json:"vars"`
}

// Options is the full query and grouping shape of an inventory build.
type Options struct {
	Regions           []string
	IncludeClusters   bool
	Statuses          []string
	AWSFilters        map[string][]string
	StrictPermissions bool
	Strict            bool
	KeyedGroups       []string
	GroupExprs        []string
	ComposeExprs      []string
}

// Inventory is the grouped form rendered by the inv command.
type Inventory struct {
	Hosts  map[string]map[string]interface{} `json:"hosts" yaml:"hosts"`
	Groups map[string][]string               `json:"groups" yaml:"groups"`
}

// Build assembles an Inventory from fetched hosts. Every host lands in the
// `all` group and a per-region group; keyed groups, group conditions and
// composed vars are applied per the options. Expression failures are fatal
// only when opts.Strict.
func Build(hosts []Host, opts Options) (*Inventory, error) {
	inv := &Inventory{
		Hosts:  make(map[string]map[string]interface{}),
		Groups: make(map[string][]string),
	}

	keyed, err := parseKeyedGroups(opts.KeyedGroups)
	if err != nil {
		return nil, err
	}

	for _, host := range hosts {
		// Compose first so derived vars are visible to grouping.
		if err := composeVars(&host, opts.ComposeExprs, opts.Strict); err != nil {
			return nil, err
		}

		inv.Hosts[host.Name] = host.Vars

		inv.addToGroup("all", host.Name)
		if region, ok := host.Vars["region"].(string); ok && region != "" {
			inv.addToGroup(sanitizeGroupName(region), host.Name)
		}

		for _, kg := range keyed {
			name, ok := kg.groupName(host)
			if !ok {
				continue
			}
			inv.addToGroup(name, host.Name)
		}

		if err := inv.applyGroupExprs(host, opts.GroupExprs, opts.Strict); err != nil {
			return nil, err
		}
	}

	for group := range inv.Groups {
		sort.Strings(inv.Groups[group])
	}

	return inv, nil
}

// addToGroup appends a host to a group exactly once.
func (inv *Inventory) addToGroup(group, host string) {
	for _, existing := range inv.Groups[group] {
		if existing == host {
			return
		}
	}
	inv.Groups[group] = append(inv.Groups[group], host)
}

// HostNames returns the inventory's host names, sorted.
func (inv *Inventory) HostNames() []string {
	names := make([]string, 0, len(inv.Hosts))
	for name := range inv.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalHosts renders the hosts as a JSON array for the output pipeline.
func MarshalHosts(hosts []Host) ([]byte, error) {
	rows := make([]map[string]interface{}, 0, len(hosts))
	for _, host := range hosts {
		rows = append(rows, host.Vars)
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshaling hosts: %w", err)
	}
	return data, nil
}

// UnmarshalHosts is the inverse of the cache entry written by WriteCache.
func UnmarshalHosts(data []byte) ([]Host, error) {
	var hosts []Host
	if err := json.Unmarshal(data, &hosts); err != nil {
		return nil, fmt.Errorf("parsing cached hosts: %w", err)
	}
	return hosts, nil
}

// expressionFailure funnels a group/compose evaluation error through the
// strict switch: fatal when strict, a warning otherwise.
func expressionFailure(strict bool, host string, err error) error {
	if strict {
		return err
	}
	log.Warnf("host %s: %v", host, err)
	return nil
}
