// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package filters

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/awsctl/awsctl/internal/attrs"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

// testBuildFiltersCase represents a single test case for TestBuildFilters.
type testBuildFiltersCase struct {
	Name      string   `yaml:"name"`
	Spec      string   `yaml:"spec"`
	Delimiter string   `yaml:"delimiter"`
	Want      []Filter `yaml:"want"`
	WantCount int      `yaml:"wantCount"`
}

// testCheckStringOperandCase represents a single test case for
// TestCheckStringOperand.
type testCheckStringOperandCase struct {
	Name   string `yaml:"name"`
	Value  string `yaml:"value"`
	Filter Filter `yaml:"filter"`
	Want   bool   `yaml:"want"`
}

// testCheckNumericOperandCase represents a single test case for
// TestCheckNumericOperand.
type testCheckNumericOperandCase struct {
	Name   string  `yaml:"name"`
	Value  float64 `yaml:"value"`
	Filter Filter  `yaml:"filter"`
	Want   bool    `yaml:"want"`
}

// testCheckContainsOperandCase represents a single test case for
// TestCheckContainsOperand.
type testCheckContainsOperandCase struct {
	Name   string      `yaml:"name"`
	Value  interface{} `yaml:"value"`
	Filter Filter      `yaml:"filter"`
	Want   bool        `yaml:"want"`
}

// testApplyFiltersCase represents a single test case for TestApplyFilters.
type testApplyFiltersCase struct {
	Name    string   `yaml:"name"`
	Filters []Filter `yaml:"filters"`
	Want    bool     `yaml:"want"`
}

// testFilterDatasetCase represents a single test case for TestFilterDataset.
type testFilterDatasetCase struct {
	Name      string   `yaml:"name"`
	Spec      string   `yaml:"spec"`
	WantCount int      `yaml:"wantCount"`
	WantNames []string `yaml:"wantNames"`
}

// loadTestData loads test data from embedded YAML files.
func loadTestData(filename string, v interface{}) error {
	data, err := testDataFS.ReadFile("testdata/" + filename)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}

func TestBuildFilters(t *testing.T) {
	var tests []testBuildFiltersCase
	require.NoError(t, loadTestData("filters_test_build_filters.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			if tt.Delimiter != "" {
				t.Setenv("AWSCTL_FILTER_DELIM", tt.Delimiter)
			}

			got := BuildFilters(tt.Spec)
			assert.Len(t, got, tt.WantCount)
			if tt.Want != nil {
				for i, filter := range tt.Want {
					assert.Equal(t, filter.Key, got[i].Key)
					assert.Equal(t, filter.Operand, got[i].Operand)
					assert.Equal(t, filter.Value, got[i].Value)
					assert.Equal(t, filter.Negate, got[i].Negate)
					assert.Equal(t, filter.ServerSide, got[i].ServerSide)
				}
			}
		})
	}
}

func TestServerSideFilters(t *testing.T) {
	got := ServerSideFilters("_engine=postgres,Engine=mysql,_db-instance-id=orders|billing")

	assert.Len(t, got, 2)
	assert.Equal(t, []string{"postgres"}, got["engine"])
	assert.Equal(t, []string{"orders", "billing"}, got["db-instance-id"])
}

func TestServerSideFilters_RejectsNonEquality(t *testing.T) {
	got := ServerSideFilters("_engine^post,_db-instance-id!=orders")

	assert.Empty(t, got)
}

func TestCheckStringOperand(t *testing.T) {
	var tests []testCheckStringOperandCase
	require.NoError(t, loadTestData("filters_test_check_string_operand.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got := checkStringOperand(tt.Value, tt.Filter)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestCheckNumericOperand(t *testing.T) {
	var tests []testCheckNumericOperandCase
	require.NoError(t, loadTestData("filters_test_check_numeric_operand.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got := checkNumericOperand(tt.Value, tt.Filter)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestCheckContainsOperand(t *testing.T) {
	var tests []testCheckContainsOperandCase
	require.NoError(t, loadTestData("filters_test_check_contains_operand.yaml", &tests))

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got := checkContainsOperand(tt.Value, tt.Filter)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		value  interface{}
		want   float64
		wantOk bool
	}{
		{name: "float64", value: float64(5432), want: 5432, wantOk: true},
		{name: "int", value: 100, want: 100, wantOk: true},
		{name: "int64", value: int64(-7), want: -7, wantOk: true},
		{name: "uint32", value: uint32(3306), want: 3306, wantOk: true},
		{name: "string", value: "5432", wantOk: false},
		{name: "nil", value: nil, wantOk: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toFloat64(tt.value)
			assert.Equal(t, tt.wantOk, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestApplyFilters(t *testing.T) {
	var tests []testApplyFiltersCase
	require.NoError(t, loadTestData("filters_test_apply_filters.yaml", &tests))

	testData := `
	{
		"DBInstanceIdentifier": "orders-db",
		"Engine": "postgres",
		"DBInstanceStatus": "available",
		"MultiAZ": true,
		"AllocatedStorage": 100,
		"Endpoint": {"Address": "orders-db.abc.us-east-1.rds.amazonaws.com", "Port": 5432},
		"region": "us-east-1"
	}
	`

	attrList := attrs.AttrList{
		{Key: "DBInstanceIdentifier", OutputKey: "DBInstanceIdentifier", Include: true},
		{Key: "Engine", OutputKey: "Engine", Include: true},
		{Key: "DBInstanceStatus", OutputKey: "status", Include: true},
		{Key: "MultiAZ", OutputKey: "MultiAZ", Include: true},
		{Key: "AllocatedStorage", OutputKey: "AllocatedStorage", Include: true},
		{Key: "Endpoint.Port", OutputKey: "Port", Include: true},
		{Key: "region", OutputKey: "region", Include: true},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result := gjson.Parse(testData)
			got := applyFilters(result, attrList, tt.Filters)
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestFilterDataset(t *testing.T) {
	var tests []testFilterDatasetCase
	require.NoError(t, loadTestData("filters_test_filter_dataset.yaml", &tests))

	testData := `
	[
		{
			"DBInstanceIdentifier": "orders-db",
			"Engine": "postgres",
			"DBInstanceStatus": "available"
		},
		{
			"DBInstanceIdentifier": "billing-db",
			"Engine": "mysql",
			"DBInstanceStatus": "creating"
		},
		{
			"DBInstanceIdentifier": "orders-db-replica",
			"Engine": "postgres",
			"DBInstanceStatus": "available"
		}
	]
	`

	attrList := attrs.AttrList{
		{Key: "DBInstanceIdentifier", OutputKey: "name", Include: true},
		{Key: "Engine", OutputKey: "engine", Include: true},
		{Key: "DBInstanceStatus", OutputKey: "status", Include: true},
	}

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			candidates := gjson.Parse(testData)
			got := FilterDataset(candidates, attrList, tt.Spec)
			assert.Len(t, got, tt.WantCount)
			for i, expected := range tt.WantNames {
				assert.Equal(t, expected, got[i]["name"])
			}
		})
	}
}
