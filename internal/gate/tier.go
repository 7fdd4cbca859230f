// Package gate enforces how many generation runs an account may have in flight.
package gate

import (
	"fmt"
	"strings"
)

// Tier is a subscription level.
type Tier string

// Subscription tiers
const (
	TierHobby  Tier = "hobby"
	TierPro    Tier = "pro"
	TierAgency Tier = "agency"
)

// tierLimits is the static concurrency table.
var tierLimits = map[Tier]int{
	TierHobby:  1,
	TierPro:    3,
	TierAgency: 10,
}

// Tiers returns every tier from smallest to largest.
func Tiers() []Tier {
	return []Tier{TierHobby, TierPro, TierAgency}
}

// ParseTier accepts a tier name in any case. An empty name means Hobby.
func ParseTier(name string) (Tier, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return TierHobby, nil
	}
	t := Tier(name)
	if _, ok := tierLimits[t]; !ok {
		return "", fmt.Errorf("unknown tier %q", name)
	}
	return t, nil
}

// Limit returns the number of simultaneous runs allowed, or 0 for an unknown tier.
func (t Tier) Limit() int {
	return tierLimits[t]
}

// String returns the display name of the tier.
func (t Tier) String() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}
