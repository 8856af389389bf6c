// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/awsctl/awsctl/internal/filters"
)

// outputFormats are the renderings the output pipeline understands. text is
// the table view, raw is the unshaped SDK JSON.
var outputFormats = []string{"text", "json", "raw", "yaml"}

type FlagValidatorType func(any) error

// FlagValidators runs value through each validator, stopping at the first
// failure.
func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator runs before the dataset commands and covers the rules
// the per-flag validators cannot see. A --filter spec that parses to zero
// usable filters would otherwise pass every row and look like a no-op.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if spec := c.String("filter"); spec != "" {
		if len(filters.BuildFilters(spec)) == 0 {
			return fmt.Errorf("no usable filter in %q", spec)
		}
	}
	return nil
}

// OutputValidator rejects --output values the renderer does not support.
func OutputValidator(value any) error {
	if s, ok := value.(string); ok && slices.Contains(outputFormats, s) {
		return nil
	}
	return fmt.Errorf("must be one of %v", outputFormats)
}
