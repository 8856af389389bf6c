// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package transfer copies files to and from instances using an S3 staging
// bucket and presigned URLs, with the remote side driven over an existing
// SSM session.
package transfer
