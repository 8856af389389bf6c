// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters provides filtering capabilities for describe result rows.
//
// The package parses filter expressions to select subsets of rows based on
// attribute values. Filters are specified as key-operator-target expressions
// and can be combined using a configurable delimiter (default: comma).
//
// Operators include:
//
//   - = : exact match (supports negation with !=)
//   - ^ : prefix match (supports negation with !^)
//   - ~ : case-insensitive match (supports negation with !~)
//   - < : less than (numeric comparison)
//   - > : greater than (numeric comparison)
//   - @ : contains substring or member (supports negation with !@)
//   - / : regex match (supports negation with !/)
//
// Examples:
//
//   - "Engine=postgres" : rows where Engine equals "postgres"
//   - "DBInstanceIdentifier^orders-" : rows whose identifier starts with "orders-"
//   - "DBInstanceStatus!=available" : rows not currently available
//   - "Endpoint.Port>5000" : rows with a port greater than 5000
//
// Filter Keys and Attributes:
//
// Filter keys are matched against the OutputKey of attributes (see attrs
// package). Keys prefixed with underscore (_) are server-side AWS API filters:
// they are handed to the describe call (see ServerSideFilters) and silently
// ignored during client-side row filtering.
//
// Filter Parsing:
//
// The BuildFilters function parses a comma-delimited (or custom-delimited
// via AWSCTL_FILTER_DELIM) filter specification string. Invalid
// specifications (unsupported operands or malformed expressions) are logged
// and skipped, allowing partial filter sets to be processed.
package filters
