// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	// ErrSyncInProgress is returned by manual triggers when a run is already
	// in flight. Triggers are dropped, never queued.
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrNotStarted is returned by manual triggers before Start has been
	// called.
	ErrNotStarted = errors.New("sync engine is not started")
)
