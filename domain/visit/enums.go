package visit

// Status represents the lifecycle state of a visit.
// Visits are never hard-deleted; they only move between statuses.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusUnknown   Status = "unknown"
)

// ParseStatus converts a stored string into a Status, falling back to
// StatusUnknown for missing or malformed values.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// PersonMet classifies who the visitor met at the institution.
type PersonMet string

const (
	PersonMetDirector PersonMet = "director"
	PersonMetStaff    PersonMet = "staff"
	PersonMetChildren PersonMet = "children"
	PersonMetOther    PersonMet = "other"
	PersonMetUnknown  PersonMet = "unknown"
)

// ParsePersonMet converts a stored string into a PersonMet value.
func ParsePersonMet(s string) PersonMet {
	switch PersonMet(s) {
	case PersonMetDirector, PersonMetStaff, PersonMetChildren, PersonMetOther:
		return PersonMet(s)
	default:
		return PersonMetUnknown
	}
}

// Quality is the visitor's assessment of the visit.
type Quality string

const (
	QualityGood    Quality = "good"
	QualityAverage Quality = "average"
	QualityPoor    Quality = "poor"
	QualityUnknown Quality = "unknown"
)

// ParseQuality converts a stored string into a Quality value.
func ParseQuality(s string) Quality {
	switch Quality(s) {
	case QualityGood, QualityAverage, QualityPoor:
		return Quality(s)
	default:
		return QualityUnknown
	}
}

// Hours classifies how long the visit lasted.
type Hours string

const (
	HoursFullDay Hours = "full_day"
	HoursHalfDay Hours = "half_day"
	HoursShort   Hours = "short"
	HoursUnknown Hours = "unknown"
)

// ParseHours converts a stored string into an Hours value.
func ParseHours(s string) Hours {
	switch Hours(s) {
	case HoursFullDay, HoursHalfDay, HoursShort:
		return Hours(s)
	default:
		return HoursUnknown
	}
}

// Label returns a display label for a status, with "Unknown" as the
// guard value so a malformed record never blanks out a view.
func (s Status) Label() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
