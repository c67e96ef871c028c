package smhi

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/obsgrid/obsgrid/internal/observation"
)

// The corrected archive is heterogeneous delimited text: metadata comment
// lines, a station-identity line, a parameter-identity line, and a data
// table whose layout differs by data family. No tag announces the family up
// front; it is detected from the table's header line, and that choice then
// drives interpretation of every subsequent date-led row.

// rowMode identifies the archive data-table family.
type rowMode int

const (
	modeNone rowMode = iota

	// modeHourly: date;time;value;quality rows, timestamps combined as UTC.
	modeHourly

	// modeDailyPrecip: fromDateTime;toDateTime;representativeDay;value;quality
	// rows; the representative day anchors the reading at noon.
	modeDailyPrecip

	// modeHydroDaily: date;value;quality rows anchored at noon.
	modeHydroDaily
)

// Archive header markers. The hourly table leads with a date+time column
// header, the daily precipitation table with a from/to range header, and the
// hydrological daily table with a summer-time date header.
const (
	hourlyHeaderMarker      = "Datum;Tid (UTC)"
	dailyPrecipHeaderMarker = "Från Datum Tid (UTC)"
	hydroDailyHeaderMarker  = "Datum (svensk sommartid)"

	periodFromMarker = "Tidsperiod (fr.o.m)"
	periodToMarker   = "Tidsperiod (t.o.m)"

	// operatorMarker appears in the station-identity line of every archive.
	operatorMarker = "SMHI"
)

// headerKeywords are line prefixes that disqualify a line from being read as
// station or parameter identity.
var headerKeywords = []string{
	"Datum",
	"Från",
	"Stationsnamn",
	"Parameternamn",
	"Tidsperiod",
	"Kvalitet",
}

// unitTokens are lowercased substrings that identify the parameter-identity
// line by its trailing unit field.
var unitTokens = []string{
	"celsius",
	"m³/s",
	"procent",
	"millimeter",
	"mm",
	"m/s",
	"hpa",
	"grader",
	"meter",
}

// dateLedRe matches lines that begin with a 4-digit-year date, i.e. data
// rows. Both identity heuristics must never fire on these.
var dateLedRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ParseResult is the uniform output of one parsed archive document.
// Readings preserve source order; the table is already chronological.
type ParseResult struct {
	Readings      []observation.Reading
	StationName   string
	StationID     int64
	ParameterName string
	ParameterUnit string
	From          time.Time
	To            time.Time

	// Skipped counts date-led rows dropped for failing numeric or field
	// parsing. Archives contain occasional blank or corrupt rows; one bad
	// historical row must not fail a decade-long query.
	Skipped int
}

// ParseArchive parses a corrected-archive document.
func ParseArchive(doc string) *ParseResult {
	result := &ParseResult{}
	mode := modeNone

	for _, raw := range strings.Split(doc, "\n") {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch {
		case dateLedRe.MatchString(line):
			reading, ok := parseDataRow(line, mode)
			if !ok {
				result.Skipped++
				continue
			}
			result.Readings = append(result.Readings, reading)

		case strings.HasPrefix(line, hourlyHeaderMarker):
			mode = modeHourly

		case strings.HasPrefix(line, dailyPrecipHeaderMarker):
			mode = modeDailyPrecip

		case strings.HasPrefix(line, hydroDailyHeaderMarker):
			mode = modeHydroDaily

		case strings.Contains(line, periodFromMarker):
			if ts, ok := parseMetadataTime(line); ok {
				result.From = ts
			}

		case strings.Contains(line, periodToMarker):
			if ts, ok := parseMetadataTime(line); ok {
				result.To = ts
			}

		case isStationLine(line):
			fields := splitFields(line)
			result.StationName = fields[0]
			if id, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
				result.StationID = id
			}

		case isParameterLine(line):
			fields := splitFields(line)
			result.ParameterName = fields[0]
			result.ParameterUnit = fields[len(fields)-1]
		}
	}

	return result
}

// parseDataRow interprets one date-led row according to the active mode.
func parseDataRow(line string, mode rowMode) (observation.Reading, bool) {
	fields := splitFields(line)

	switch mode {
	case modeHourly:
		// date;time;value;quality;...
		if len(fields) < 4 {
			return observation.Reading{}, false
		}
		ts, err := time.ParseInLocation("2006-01-02 15:04:05", fields[0]+" "+fields[1], time.UTC)
		if err != nil {
			return observation.Reading{}, false
		}
		return buildReading(ts, fields[2], fields[3])

	case modeDailyPrecip:
		// fromDateTime;toDateTime;representativeDay;value;quality;...
		if len(fields) < 5 {
			return observation.Reading{}, false
		}
		ts, ok := noonOf(fields[2])
		if !ok {
			return observation.Reading{}, false
		}
		return buildReading(ts, fields[3], fields[4])

	case modeHydroDaily:
		// date;value;quality;...
		if len(fields) < 3 {
			return observation.Reading{}, false
		}
		ts, ok := noonOf(fields[0])
		if !ok {
			return observation.Reading{}, false
		}
		return buildReading(ts, fields[1], fields[2])

	default:
		// Date-led row before any recognized table header: nothing to
		// interpret it with, drop it.
		return observation.Reading{}, false
	}
}

// buildReading assembles a reading, rejecting non-numeric values.
func buildReading(ts time.Time, value, quality string) (observation.Reading, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return observation.Reading{}, false
	}
	return observation.Reading{
		Timestamp: ts,
		Value:     v,
		Quality:   strings.TrimSpace(quality),
	}, true
}

// noonOf anchors a plain date at twelve o'clock, the representative instant
// of a day-resolution reading.
func noonOf(date string) (time.Time, bool) {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return d.Add(12 * time.Hour), true
}

// isStationLine reports whether the line carries station identity: it
// mentions the network operator, is not a column header, and is not a data
// row.
func isStationLine(line string) bool {
	if !strings.Contains(line, operatorMarker) {
		return false
	}
	if startsWithHeaderKeyword(line) || dateLedRe.MatchString(line) {
		return false
	}
	return len(splitFields(line)) >= 2
}

// isParameterLine reports whether the line carries parameter identity: two
// to four fields whose last field names a known unit.
func isParameterLine(line string) bool {
	if startsWithHeaderKeyword(line) || dateLedRe.MatchString(line) {
		return false
	}

	fields := splitFields(line)
	if len(fields) < 2 || len(fields) > 4 {
		return false
	}

	unit := strings.ToLower(fields[len(fields)-1])
	if unit == "" {
		return false
	}
	for _, token := range unitTokens {
		if strings.Contains(unit, token) {
			return true
		}
	}
	return false
}

func startsWithHeaderKeyword(line string) bool {
	for _, keyword := range headerKeywords {
		if strings.HasPrefix(line, keyword) {
			return true
		}
	}
	return false
}

// parseMetadataTime extracts the timestamp from a period metadata line such
// as "Tidsperiod (fr.o.m);1961-01-01 00:00:00".
func parseMetadataTime(line string) (time.Time, bool) {
	fields := splitFields(line)
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if ts, err := time.ParseInLocation("2006-01-02 15:04:05", f, time.UTC); err == nil {
			return ts, true
		}
		if ts, err := time.ParseInLocation("2006-01-02", f, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// splitFields splits a semicolon-delimited line, trimming trailing empty
// columns but preserving interior ones.
func splitFields(line string) []string {
	fields := strings.Split(line, ";")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}
