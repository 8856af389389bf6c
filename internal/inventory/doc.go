// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package inventory enumerates RDS instances and Aurora clusters across
// regions and shapes them into an inventory: hostvars from the describe
// JSON, an `all` group, per-region groups, keyed groups drilled out of the
// hostvars, and expression-driven groups and composed vars. Host sets are
// cached on disk keyed by the query shape, optionally encrypted, and can be
// drift-compared against the live dataset.
package inventory
