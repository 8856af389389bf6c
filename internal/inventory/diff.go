// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inventory

import (
	"encoding/json"
	"fmt"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// DiffReport renders the drift between a cached snapshot and the live host
// set as an ASCII diff. The second return is false when the two are
// identical.
func DiffReport(cached, live []Host) (string, bool, error) {
	left, err := json.Marshal(hostsByName(cached))
	if err != nil {
		return "", false, fmt.Errorf("marshaling snapshot: %w", err)
	}
	right, err := json.Marshal(hostsByName(live))
	if err != nil {
		return "", false, fmt.Errorf("marshaling live hosts: %w", err)
	}

	differ := gojsondiff.New()
	delta, err := differ.Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("comparing host sets: %w", err)
	}

	if !delta.Modified() {
		return "", false, nil
	}

	var leftDoc map[string]interface{}
	if err := json.Unmarshal(left, &leftDoc); err != nil {
		return "", false, fmt.Errorf("unmarshaling snapshot: %w", err)
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       true,
	}

	report, err := formatter.NewAsciiFormatter(leftDoc, config).Format(delta)
	if err != nil {
		return "", false, err
	}

	return report, true, nil
}

// hostsByName keys the host set so the diff walks stable object keys instead
// of positional array entries.
func hostsByName(hosts []Host) map[string]interface{} {
	doc := make(map[string]interface{}, len(hosts))
	for _, host := range hosts {
		doc[host.Name] = host.Vars
	}
	return doc
}
