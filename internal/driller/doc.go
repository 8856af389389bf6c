// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package driller navigates the JSON documents returned by AWS describe
// calls, resolving dotted paths with optional array indexes for the
// filtering, attribute and grouping layers.
package driller
