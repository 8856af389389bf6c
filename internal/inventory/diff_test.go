// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffReport_Identical(t *testing.T) {
	report, modified, err := DiffReport(testHosts(), testHosts())

	require.NoError(t, err)
	assert.False(t, modified)
	assert.Empty(t, report)
}

func TestDiffReport_StatusDrift(t *testing.T) {
	live := testHosts()
	live[1].Vars["DBInstanceStatus"] = "available"

	report, modified, err := DiffReport(testHosts(), live)

	require.NoError(t, err)
	assert.True(t, modified)
	assert.Contains(t, report, "DBInstanceStatus")
	assert.Contains(t, report, "available")
}

func TestDiffReport_HostAppeared(t *testing.T) {
	live := append(testHosts(), Host{
		Name: "reports-db",
		Vars: map[string]interface{}{"Engine": "postgres", "region": "us-east-1"},
	})

	report, modified, err := DiffReport(testHosts(), live)

	require.NoError(t, err)
	assert.True(t, modified)
	assert.Contains(t, report, "reports-db")
}
