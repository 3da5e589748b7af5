// package command models the device's execution surface as the graph sees it:
// queue families classified by capability, queue identities, and the
// wait/signal/fence assembly handed to the Factory when a node's recorded work
// is submitted.
package command

// Capability classifies the GPU work a queue family can execute, or the work a
// node requires. It is a bit set so a general-purpose family can advertise
// several capabilities at once.
type Capability uint8

const (
	// CapabilityTransfer covers copy and blit operations.
	CapabilityTransfer Capability = 1 << iota
	// CapabilityCompute covers compute dispatches (implies transfer on real hardware).
	CapabilityCompute
	// CapabilityGraphics covers render passes and draws.
	CapabilityGraphics
)

// CapabilityGeneral is the full capability set of a general-purpose queue family.
const CapabilityGeneral = CapabilityTransfer | CapabilityCompute | CapabilityGraphics

// Supports reports whether a family with this capability set can execute work
// requiring the given capability.
//
// Parameters:
//   - required: the capability a node requires
//
// Returns:
//   - bool: true if every required bit is present in the set
func (c Capability) Supports(required Capability) bool {
	return c&required == required
}

// String returns a short human-readable form of the capability set.
func (c Capability) String() string {
	switch {
	case c.Supports(CapabilityGeneral):
		return "general"
	case c.Supports(CapabilityGraphics):
		return "graphics"
	case c.Supports(CapabilityCompute):
		return "compute"
	case c.Supports(CapabilityTransfer):
		return "transfer"
	default:
		return "none"
	}
}
