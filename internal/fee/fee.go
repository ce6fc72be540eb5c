// Package fee prices a finished rental from its duration.
package fee

const (
	// BlockSeconds is the billing granularity.
	BlockSeconds = 10
	// PricePerBlock is charged for every started block, in currency units.
	PricePerBlock = 100
)

// Compute returns the fee for a rental of the given duration. Billing is
// per started block: any fraction of a block counts as a full one.
// Negative durations price as zero.
func Compute(elapsedSeconds int64) int64 {
	if elapsedSeconds <= 0 {
		return 0
	}
	blocks := (elapsedSeconds + BlockSeconds - 1) / BlockSeconds
	return blocks * PricePerBlock
}
