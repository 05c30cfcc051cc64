package guard

import (
	"fmt"
	"testing"
	"time"
)

func TestAllow_SuppressesWithinWindow(t *testing.T) {
	base := time.Now()
	c := NewCooldown(30 * time.Second)
	c.nowF = func() time.Time { return base }

	if !c.Allow("sess-1", "member-1") {
		t.Fatal("first attempt should be allowed")
	}
	if c.Allow("sess-1", "member-1") {
		t.Fatal("immediate re-attempt should be suppressed")
	}

	c.nowF = func() time.Time { return base.Add(29 * time.Second) }
	if c.Allow("sess-1", "member-1") {
		t.Fatal("attempt at 29s should still be suppressed")
	}

	c.nowF = func() time.Time { return base.Add(30 * time.Second) }
	if !c.Allow("sess-1", "member-1") {
		t.Fatal("attempt at 30s should be allowed again")
	}
}

func TestAllow_IndependentPairs(t *testing.T) {
	c := NewCooldown(30 * time.Second)

	if !c.Allow("sess-1", "member-1") {
		t.Fatal("first attempt should be allowed")
	}
	if !c.Allow("sess-1", "member-2") {
		t.Error("different subject must not share the window")
	}
	if !c.Allow("sess-2", "member-1") {
		t.Error("different session must not share the window")
	}
}

func TestForget(t *testing.T) {
	c := NewCooldown(30 * time.Second)

	if !c.Allow("sess-1", "member-1") {
		t.Fatal("first attempt should be allowed")
	}
	c.Forget("sess-1", "member-1")
	if !c.Allow("sess-1", "member-1") {
		t.Error("attempt after Forget should be allowed")
	}
}

func TestAllow_SweepsExpiredEntries(t *testing.T) {
	base := time.Now()
	c := NewCooldown(30 * time.Second)
	c.nowF = func() time.Time { return base }

	for i := 0; i < sweepThreshold; i++ {
		c.Allow("sess-1", fmt.Sprintf("member-%d", i))
	}

	c.nowF = func() time.Time { return base.Add(time.Minute) }
	if !c.Allow("sess-2", "member-x") {
		t.Fatal("attempt should be allowed")
	}
	c.mu.Lock()
	n := len(c.m)
	c.mu.Unlock()
	if n != 1 {
		t.Errorf("entries after sweep = %d, want 1", n)
	}
}
