package newtonm2

// stepTracker detects measurement-step boundaries for records that are
// aggregated from several message types sharing one timestamp. The first
// message of a new step records the timestamp and is not emitted; once a
// second message confirms the same timestamp the accumulated record is
// complete for that step.
type stepTracker struct {
	ts  float64
	set bool
}

// boundary reports whether ts opens a new measurement step, recording it.
func (s *stepTracker) boundary(ts float64) bool {
	if !s.set || s.ts != ts {
		s.ts = ts
		s.set = true
		return true
	}
	return false
}
