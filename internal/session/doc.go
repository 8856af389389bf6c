// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package session drives command execution on EC2 instances over SSM Session
// Manager. A session is opened with ssm:StartSession and handed to a
// session-manager-plugin subprocess; commands are written to the remote shell
// framed between random sentinels so their output and exit code can be picked
// back out of the stream. Interactive shells bypass the framing and attach
// the plugin to the local terminal.
package session
