package growth

import "sync/atomic"

// Stats is a point-in-time snapshot of engine diagnostics. It mirrors the
// counters color_generator.rs's driver accumulated (colorMisses,
// collisionMisses) while dropping the wall-clock timing breakdown, which
// is presentation rather than data a caller would act on.
type Stats struct {
	Placed          int64
	ColorMisses     int64
	CollisionMisses int64
}

type atomicStats struct {
	placed          atomic.Int64
	colorMisses     atomic.Int64
	collisionMisses atomic.Int64
}

func (s *atomicStats) snapshot() Stats {
	return Stats{
		Placed:          s.placed.Load(),
		ColorMisses:     s.colorMisses.Load(),
		CollisionMisses: s.collisionMisses.Load(),
	}
}
