// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package expr evaluates HCL expressions against a host's variables. It backs
// the --group and --compose flags, where group membership conditions and
// composed hostvars are written as expressions over the describe JSON, e.g.
//
//	Engine == "postgres" && MultiAZ
//	format("%s:%d", Endpoint.Address, Endpoint.Port)
//	try(TagList[0].Value, "untagged")
package expr
