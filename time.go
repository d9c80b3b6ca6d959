package auth

import "time"

// IsWithinThresholdPeriod checks if the given time is within the threshold
func IsWithinThresholdPeriod(t time.Time, window time.Duration) bool {
	return IsWithinThresholdPeriodAt(t, window, time.Now())
}

// IsWithinThresholdPeriodAt is IsWithinThresholdPeriod against an
// explicit reference instant, for clock-injected callers.
func IsWithinThresholdPeriodAt(t time.Time, window time.Duration, now time.Time) bool {
	return t.After(now.Add(-window))
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t time.Time, window time.Duration) bool {
	return !IsWithinThresholdPeriod(t, window)
}

// IsOutsideThresholdPeriodAt is the negation of IsWithinThresholdPeriodAt
func IsOutsideThresholdPeriodAt(t time.Time, window time.Duration, now time.Time) bool {
	return !IsWithinThresholdPeriodAt(t, window, now)
}
