package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KST is the reference timezone for every do-not-disturb window. Korea
// has no DST, so a fixed offset is exact and avoids loading tzdata.
var KST = time.FixedZone("Asia/Seoul", 9*60*60)

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Validate rejects enabled schedules whose bounds do not parse. Disabled
// schedules are always valid since the bounds are never consulted.
func (s Schedule) Validate() error {
	if !s.Enabled {
		return nil
	}
	if _, err := ParseClock(s.Start); err != nil {
		return fmt.Errorf("schedule start: %w", err)
	}
	if _, err := ParseClock(s.End); err != nil {
		return fmt.Errorf("schedule end: %w", err)
	}
	return nil
}

// Allowed reports whether delivery is permitted at the given instant.
// A disabled schedule always allows delivery. Bounds are inclusive; a
// start later than the end describes a window wrapping past midnight.
// Malformed bounds on an enabled schedule allow delivery: validation at
// the store boundary is the real guard, this is the fallback.
func (s Schedule) Allowed(now time.Time) bool {
	if !s.Enabled {
		return true
	}
	start, err := ParseClock(s.Start)
	if err != nil {
		return true
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return true
	}
	local := now.In(KST)
	cur := local.Hour()*60 + local.Minute()

	if start <= end {
		return cur >= start && cur <= end
	}
	return cur >= start || cur <= end
}
