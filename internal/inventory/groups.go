// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/awsctl/awsctl/internal/driller"
	"github.com/awsctl/awsctl/internal/expr"
)

// keyedGroup is a parsed --keyed-group spec: PREFIX:KEY[:SEPARATOR].
type keyedGroup struct {
	Prefix    string
	Key       string
	Separator string
}

// parseKeyedGroups parses the repeatable --keyed-group specs. The key is a
// dotted path into the hostvars, e.g. `rds:Engine` or `tag:TagList.Value:-`.
func parseKeyedGroups(specs []string) ([]keyedGroup, error) {
	//nolint:prealloc
	var groups []keyedGroup
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("invalid keyed group %q: want PREFIX:KEY[:SEPARATOR]", spec)
		}

		kg := keyedGroup{
			Prefix:    parts[0],
			Key:       parts[1],
			Separator: "_",
		}
		if len(parts) == 3 && parts[2] != "" {
			kg.Separator = parts[2]
		}
		groups = append(groups, kg)
	}
	return groups, nil
}

// groupName derives the group a host belongs to under this keyed group.
// Hosts without the key simply don't join.
func (kg keyedGroup) groupName(host Host) (string, bool) {
	raw, err := json.Marshal(host.Vars)
	if err != nil {
		return "", false
	}

	value := driller.Drill(string(raw), kg.Key)
	if !value.Exists() || value.String() == "" {
		return "", false
	}

	name := value.String()
	if kg.Prefix != "" {
		name = kg.Prefix + kg.Separator + name
	}
	return sanitizeGroupName(name), true
}

// applyGroupExprs adds the host to each NAME=EXPR group whose condition
// holds over its hostvars.
func (inv *Inventory) applyGroupExprs(host Host, specs []string, strict bool) error {
	for _, spec := range specs {
		name, expression, found := strings.Cut(spec, "=")
		if !found || name == "" {
			return fmt.Errorf("invalid group %q: want NAME=EXPR", spec)
		}

		ok, err := expr.EvalBool(expression, host.Vars)
		if err != nil {
			if ferr := expressionFailure(strict, host.Name, err); ferr != nil {
				return ferr
			}
			continue
		}
		if ok {
			inv.addToGroup(sanitizeGroupName(name), host.Name)
		}
	}
	return nil
}

// composeVars evaluates each VAR=EXPR spec and stores the result as a
// hostvar. Later specs can see earlier results.
func composeVars(host *Host, specs []string, strict bool) error {
	for _, spec := range specs {
		name, expression, found := strings.Cut(spec, "=")
		if !found || name == "" {
			return fmt.Errorf("invalid compose %q: want VAR=EXPR", spec)
		}

		value, err := expr.Eval(expression, host.Vars)
		if err != nil {
			if ferr := expressionFailure(strict, host.Name, err); ferr != nil {
				return ferr
			}
			continue
		}
		host.Vars[name] = value
	}
	return nil
}

// sanitizeGroupName maps anything that isn't a letter, digit or underscore
// to an underscore so group names stay shell and YAML safe.
func sanitizeGroupName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
