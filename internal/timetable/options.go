package timetable

const (
	DefaultMaxAttempts      = 8
	DefaultAttemptFactor    = 50
	DefaultMaxPerDay        = 3
	DefaultLabLoadTolerance = 1.0
)

// Options configures generation.
type Options struct {
	MaxAttempts      int     // bounded retries with fresh randomness
	Seed             int64   // master seed; 0 derives one from the clock
	LabLoadTolerance float64 // multiplier on max load accepted during lab placement only
	AttemptFactor    int     // theory draws allowed per required period
	MaxPerDay        int     // cap on one theory subject's periods per day
}

// DefaultOptions returns the strict defaults.
func DefaultOptions() Options {
	return Options{
		MaxAttempts:      DefaultMaxAttempts,
		LabLoadTolerance: DefaultLabLoadTolerance,
		AttemptFactor:    DefaultAttemptFactor,
		MaxPerDay:        DefaultMaxPerDay,
	}
}

func (o Options) normalized() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.LabLoadTolerance < 1 {
		o.LabLoadTolerance = DefaultLabLoadTolerance
	}
	if o.AttemptFactor <= 0 {
		o.AttemptFactor = DefaultAttemptFactor
	}
	if o.MaxPerDay <= 0 {
		o.MaxPerDay = DefaultMaxPerDay
	}
	return o
}
