package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierLimits(t *testing.T) {
	assert.Equal(t, 1, TierHobby.Limit())
	assert.Equal(t, 3, TierPro.Limit())
	assert.Equal(t, 10, TierAgency.Limit())
	assert.Equal(t, 0, Tier("enterprise").Limit())
}

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    Tier
		wantErr bool
	}{
		{in: "", want: TierHobby},
		{in: "Hobby", want: TierHobby},
		{in: " PRO ", want: TierPro},
		{in: "agency", want: TierAgency},
		{in: "enterprise", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTier(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "Agency", TierAgency.String())
	assert.Equal(t, []Tier{TierHobby, TierPro, TierAgency}, Tiers())
}
