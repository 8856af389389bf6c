// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex matches one dot path segment: a hostvar key with an optional
// index suffix, e.g. "Endpoint", "VpcSecurityGroups[1]", "TagList[*]".
var segmentRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d|\*)?\])?$`)

// indexAll marks an explicit [*] suffix.
const indexAll = -2

// Drill resolves a dot path against a hostvar document, the JSON shape of an
// RDS describe payload. "Endpoint.Address" walks nested objects and
// "VpcSecurityGroups[1].VpcSecurityGroupId" indexes into lists. An unindexed
// segment collapses a single-element list (so "TagList.Value" works on hosts
// with one tag) and leaves longer lists whole; [*] keeps the list whole
// regardless. An unresolvable path yields the zero Result.
func Drill(document string, path string) gjson.Result {
	current := gjson.Parse(document)

	for _, segment := range strings.Split(path, ".") {
		key, index, ok := splitSegment(segment)
		if !ok {
			return gjson.Result{}
		}

		value := current.Get(key)
		if value.IsArray() {
			list := value.Array()
			switch {
			case index >= 0 && index < len(list):
				value = list[index]
			case index == -1 && len(list) == 1:
				value = list[0]
			case index == -1, index == indexAll:
				// Leave the list whole.
			default:
				return gjson.Result{}
			}
		}

		current = value
	}

	return current
}

// splitSegment parses one path segment into the hostvar key and list index.
// index is -1 when no suffix is given and indexAll for [*].
func splitSegment(segment string) (string, int, bool) {
	matches := segmentRegex.FindStringSubmatch(segment)
	if len(matches) == 0 {
		return "", 0, false
	}

	index := -1
	switch matches[3] {
	case "":
	case "*":
		index = indexAll
	default:
		i, err := strconv.Atoi(matches[3])
		if err != nil {
			return "", 0, false
		}
		index = i
	}

	return matches[1], index, true
}
