package command

// FamilyID identifies a queue family on the device. IDs are assigned by the
// Factory and are stable for the lifetime of the device.
type FamilyID uint32

// Family describes one queue family the device exposes: its identity, the
// capability set its queues support, and how many queues it provides.
type Family struct {
	// ID is the family's device-assigned identifier.
	ID FamilyID
	// Capability is the set of work classes queues in this family can execute.
	Capability Capability
	// Queues is the number of queues available in this family (minimum 1).
	Queues int
}

// QueueID identifies a single queue: a family and an index within that family.
type QueueID struct {
	// Family is the queue's family.
	Family FamilyID
	// Index is the queue's position within the family, in [0, Family.Queues).
	Index int
}
