package command

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapability_SupportsSubset(t *testing.T) {
	require.True(t, CapabilityGeneral.Supports(CapabilityTransfer))
	require.True(t, CapabilityGeneral.Supports(CapabilityCompute))
	require.True(t, CapabilityGeneral.Supports(CapabilityGraphics))
	require.True(t, CapabilityGeneral.Supports(CapabilityGraphics|CapabilityTransfer))

	require.True(t, CapabilityTransfer.Supports(CapabilityTransfer))
	require.False(t, CapabilityTransfer.Supports(CapabilityGraphics))
	require.False(t, CapabilityCompute.Supports(CapabilityCompute|CapabilityTransfer))
}

func TestCapability_SupportsEmptyRequirement(t *testing.T) {
	// An empty requirement is satisfied by any family.
	var none Capability
	require.True(t, CapabilityTransfer.Supports(none))
	require.True(t, none.Supports(none))
}

func TestCapability_String(t *testing.T) {
	require.Equal(t, "general", CapabilityGeneral.String())
	require.Equal(t, "graphics", CapabilityGraphics.String())
	require.Equal(t, "compute", CapabilityCompute.String())
	require.Equal(t, "transfer", CapabilityTransfer.String())
	require.Equal(t, "none", Capability(0).String())
}
