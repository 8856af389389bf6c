// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package aws

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWithProfile verifies that WithProfile sets the profile option
// correctly.
func TestWithProfile(t *testing.T) {
	tests := []struct {
		name     string
		profile  string
		expected string
	}{
		{
			name:     "empty profile",
			profile:  "",
			expected: "",
		},
		{
			name:     "default profile",
			profile:  "default",
			expected: "default",
		},
		{
			name:     "custom profile",
			profile:  "my-profile",
			expected: "my-profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts options
			opt := WithProfile(tt.profile)
			opt(&opts)
			assert.Equal(t, tt.expected, opts.profile)
		})
	}
}

// TestWithRegion verifies that WithRegion sets the region option correctly.
func TestWithRegion(t *testing.T) {
	tests := []struct {
		name   string
		region string
	}{
		{name: "empty region", region: ""},
		{name: "us-east-1", region: "us-east-1"},
		{name: "eu-west-1", region: "eu-west-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts options
			opt := WithRegion(tt.region)
			opt(&opts)
			assert.Equal(t, tt.region, opts.region)
		})
	}
}

// TestWithStaticCredentials verifies the key triple is captured verbatim.
func TestWithStaticCredentials(t *testing.T) {
	var opts options
	opt := WithStaticCredentials("AKIAEXAMPLE", "secret", "token")
	opt(&opts)

	assert.Equal(t, "AKIAEXAMPLE", opts.accessKeyID)
	assert.Equal(t, "secret", opts.secretAccessKey)
	assert.Equal(t, "token", opts.sessionToken)
}

// TestWithRetryer verifies that WithRetryer stores the constructor.
func TestWithRetryer(t *testing.T) {
	var opts options
	newRetryer := func() awsv2.Retryer { return retry.NewStandard() }
	opt := WithRetryer(newRetryer)
	opt(&opts)

	require.NotNil(t, opts.retryer)
	assert.NotNil(t, opts.retryer())
}

// TestLoadAWSConfig_RegionOverride verifies the region override lands in the
// resulting config. Static env credentials keep the loader from reaching out
// to IMDS.
func TestLoadAWSConfig_RegionOverride(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("ap-southeast-2"))

	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", cfg.Region)
}

// TestLoadAWSConfig_StaticCredentials verifies static credentials replace the
// default chain.
func TestLoadAWSConfig_StaticCredentials(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := LoadAWSConfig(context.Background(),
		WithRegion("us-east-1"),
		WithStaticCredentials("AKIASTATIC", "supersecret", ""),
	)
	require.NoError(t, err)

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIASTATIC", creds.AccessKeyID)
	assert.Equal(t, "supersecret", creds.SecretAccessKey)
}

// TestNewClients verifies client constructors return non-nil clients.
func TestNewClients(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIAEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	cfg, err := LoadAWSConfig(context.Background(), WithRegion("us-east-1"))
	require.NoError(t, err)

	assert.NotNil(t, NewS3(cfg))
	assert.NotNil(t, NewSSM(cfg))
	assert.NotNil(t, NewRDS(cfg))
	assert.NotNil(t, NewSTS(cfg))
}
