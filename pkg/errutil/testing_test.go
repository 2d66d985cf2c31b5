// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VenueShare Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/venueshare/venueshare/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("SNAPSHOT_INVALID").Errorf("test error")
	errutil.AssertErrorCode(t, err, "SNAPSHOT_INVALID")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("zone_id", 342).Errorf("test error")
	errutil.AssertErrorContext(t, err, "zone_id", 342)
}
