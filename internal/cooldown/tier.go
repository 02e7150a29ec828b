package cooldown

import (
	"fmt"
	"time"
)

// Tier selects a cooldown policy bucket. Tier 0 covers ordinary
// operations, tier 1 the expensive ones backed by external APIs.
type Tier int

const (
	Tier0 Tier = iota
	Tier1
)

// ParseTier converts the wire form ("0"/"1") into a Tier.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "0", "level_0":
		return Tier0, nil
	case "1", "level_1":
		return Tier1, nil
	}
	return 0, fmt.Errorf("unknown cooldown tier %q", s)
}

func (t Tier) String() string {
	return fmt.Sprintf("level_%d", int(t))
}

// Window returns the cooldown window for one call on this tier. Premium
// subscribers get the short window.
func (t Tier) Window(premium bool) time.Duration {
	if t == Tier1 {
		if premium {
			return 60 * time.Second
		}
		return 3600 * time.Second
	}
	if premium {
		return 2 * time.Second
	}
	return 5 * time.Second
}
