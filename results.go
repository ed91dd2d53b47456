package otx

// CheckResult captures the output of the read-only verification phase.
type CheckResult struct {
	// Log contains a short human readable summary.
	Log string
}

// DeliverResult captures any info out of a settlement.
type DeliverResult struct {
	// Data is a machine-parseable return value, produced by the handler.
	// Instrument-producing kinds (withdrawal) return the serialized
	// instrument bundle here.
	Data []byte

	// Log contains a short human readable summary.
	Log string
}
