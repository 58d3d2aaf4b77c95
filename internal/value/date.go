package value

import "time"

// epochDay is the civil day number (days since 1970-01-01) of the Unix epoch.
const epochDay = 0

// DateToDays converts a Date to a day count since the Unix epoch using the
// civil calendar algorithm (Howard Hinnant's days_from_civil), which is
// valid across the proleptic Gregorian calendar without relying on
// time.Time's own (slower, allocation-heavy) date math.
func DateToDays(d Date) int64 {
	y := int64(d.Year)
	m := int64(d.Month)
	day := int64(d.Day)
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era = y - 399
	}
	era /= 400
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DaysToDate is the inverse of DateToDays.
func DaysToDate(days int64) Date {
	z := days + 719468
	era := z
	if z < 0 {
		era = z - 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if mp >= 10 {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return Date{Year: int32(y), Month: uint8(m), Day: uint8(day)}
}

// DateTimeToTimestamp converts a DateTime Value to a Unix microsecond
// timestamp.
func DateTimeToTimestamp(t time.Time) int64 {
	return t.Unix()*1_000_000 + int64(t.Nanosecond())/1000
}

// TimestampToDateTime is the inverse of DateTimeToTimestamp, always in UTC.
func TimestampToDateTime(micros int64) time.Time {
	sec := micros / 1_000_000
	rem := micros % 1_000_000
	if rem < 0 {
		rem += 1_000_000
		sec--
	}
	return time.Unix(sec, rem*1000).UTC()
}
