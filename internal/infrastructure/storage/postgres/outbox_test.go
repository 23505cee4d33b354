package postgres

import (
	"strings"
	"testing"
)

func TestDequeueClaimsRows(t *testing.T) {
	// The claim must be part of the locking statement itself: candidates
	// are locked with SKIP LOCKED and moved to processing before the
	// statement's locks are released, so two relays never publish the
	// same message.
	for _, want := range []string{
		"UPDATE sync_outbox",
		"SET status = $1",
		"FOR UPDATE SKIP LOCKED",
		"RETURNING",
	} {
		if !strings.Contains(dequeueSQL, want) {
			t.Errorf("dequeue statement missing %q", want)
		}
	}

	if strings.Index(dequeueSQL, "FOR UPDATE SKIP LOCKED") > strings.Index(dequeueSQL, "RETURNING") {
		t.Error("lock must be taken inside the claiming update, not after it")
	}

	// Expired processing claims are reclaimed alongside pending rows.
	if !strings.Contains(dequeueSQL, "status = $3 OR status = $1") {
		t.Error("dequeue statement does not reclaim expired claims")
	}
}
