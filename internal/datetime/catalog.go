package datetime

// Format is one catalog entry: a named layout of a given kind, accepted in
// one or more shapes (for example with a one- or two-digit day, or with a
// "Z" or "+HH:MM" zone suffix).
type Format struct {
	Name      string   `json:"name"`
	Kind      Kind     `json:"kind"`
	Templates []string `json:"templates"`
	shapes    []shape
}

func newFormat(name string, kind Kind, templates ...string) *Format {
	f := &Format{Name: name, Kind: kind, Templates: templates}
	for _, t := range templates {
		f.shapes = append(f.shapes, compileShape(t))
	}
	return f
}

// Match tests token against every shape of the format.
func (f *Format) Match(token string) (Value, bool) {
	for i := range f.shapes {
		if v, ok := f.shapes[i].match(token); ok && valid(v, f.Kind) {
			return v, true
		}
	}
	return Value{}, false
}

// Datetime layouts. More specific layouts come first; the order is part of
// the recognizer's contract.
var datetimeFormats = []*Format{
	newFormat("YYYYMMDD HH:MM:SS.mss", KindDateTime, "YYYYMMDD hh:mm:ss.fff"),
	newFormat("YYYY/MM/DD HH:MM:SS.mss", KindDateTime, "YYYY/MM/DD hh:mm:ss.fff"),
	newFormat("DD/MM/YYYY HH:MM:SS.mss", KindDateTime, "DD/MM/YYYY hh:mm:ss.fff"),
	newFormat("YYYYMMDD HH:MM:SS", KindDateTime, "YYYYMMDD hh:mm:ss"),
	newFormat("YYYY/MM/DD HH:MM:SS", KindDateTime, "YYYY/MM/DD hh:mm:ss"),
	newFormat("DD/MM/YYYY HH:MM:SS", KindDateTime, "DD/MM/YYYY hh:mm:ss"),
	newFormat("YYYY-MM-DD HH:MM:SS.mss", KindDateTime, "YYYY-MM-DD hh:mm:ss.fff"),
	newFormat("DD-MM-YYYY HH:MM:SS.mss", KindDateTime, "DD-MM-YYYY hh:mm:ss.fff"),
	newFormat("YYYY-MM-DD HH:MM:SS", KindDateTime, "YYYY-MM-DD hh:mm:ss"),
	newFormat("DD-MM-YYYY HH:MM:SS", KindDateTime, "DD-MM-YYYY hh:mm:ss"),
	newFormat("YYYY-MM-DDTHH:MM:SS", KindDateTime, "YYYY-MM-DDThh:mm:ss"),
	newFormat("YYYY-MM-DDTHH:MM:SS.mss", KindDateTime, "YYYY-MM-DDThh:mm:ss.fff"),
	newFormat("YYYYMMDDTHH:MM:SS", KindDateTime, "YYYYMMDDThh:mm:ss"),
	newFormat("YYYYMMDDTHH:MM:SS.mss", KindDateTime, "YYYYMMDDThh:mm:ss.fff"),
	newFormat("DD-MM-YYYYTHH:MM:SS.mss", KindDateTime, "DD-MM-YYYYThh:mm:ss.fff"),
	newFormat("DD-MM-YYYYTHH:MM:SS", KindDateTime, "DD-MM-YYYYThh:mm:ss"),
	newFormat("YYYYMMDDTHHMM", KindDateTime, "YYYYMMDDThhmm"),
	newFormat("YYYYMMDDTHHMMSS", KindDateTime, "YYYYMMDDThhmmss"),
	newFormat("YYYYMMDDTHHMMSSmss", KindDateTime, "YYYYMMDDThhmmssfff"),
	newFormat("ISO8601", KindDateTime,
		"YYYY-MM-DDThh:mm:ssZ",
		"YYYY-MM-DD hh:mm:ssZ",
		"YYYY-MM-DDThh:mm:ss+HH:II",
		"YYYY-MM-DD hh:mm:ss+HH:II",
	),
	newFormat("ISO8601 minutes", KindDateTime,
		"YYYY-MM-DDThh:mmZ",
		"YYYY-MM-DDThh:mm+HH:II",
	),
	newFormat("CommonLog", KindDateTime, "DD/NNN/YYYY:hh:mm:ss +HHII"),
	newFormat("RFC822", KindDateTime,
		"WWW, DD NNN YYYY hh:mm:ss L",
		"WWW, DD NNN YYYY hh:mm:ss UT",
		"WWW, DD NNN YYYY hh:mm:ss AAA",
		"WWW, DD NNN YYYY hh:mm:ss +HHII",
	),
	newFormat("YYYYMMDD HH:MM:SS.mcss", KindDateTime, "YYYYMMDD hh:mm:ss.uuuuuu"),
	newFormat("YYYY/MM/DD HH:MM:SS.mcss", KindDateTime, "YYYY/MM/DD hh:mm:ss.uuuuuu"),
	newFormat("DD/MM/YYYY HH:MM:SS.mcss", KindDateTime, "DD/MM/YYYY hh:mm:ss.uuuuuu"),
	newFormat("YYYY-MM-DD HH:MM:SS.mcss", KindDateTime, "YYYY-MM-DD hh:mm:ss.uuuuuu"),
	newFormat("DD-MM-YYYY HH:MM:SS.mcss", KindDateTime, "DD-MM-YYYY hh:mm:ss.uuuuuu"),
	newFormat("YYYY-MM-DDTHH:MM:SS.mcss", KindDateTime, "YYYY-MM-DDThh:mm:ss.uuuuuu"),
	newFormat("YYYYMMDDTHH:MM:SS.mcss", KindDateTime, "YYYYMMDDThh:mm:ss.uuuuuu"),
	newFormat("DD-MM-YYYYTHH:MM:SS.mcss", KindDateTime, "DD-MM-YYYYThh:mm:ss.uuuuuu"),
	newFormat("YYYYMMDDTHHMMSSmcss", KindDateTime, "YYYYMMDDThhmmssuuuuuu"),
	newFormat("ISO8601 milliseconds", KindDateTime,
		"YYYY-MM-DDThh:mm:ss.fffZ",
		"YYYY-MM-DD hh:mm:ss.fffZ",
		"YYYY-MM-DDThh:mm:ss.fff+HH:II",
		"YYYY-MM-DD hh:mm:ss.fff+HH:II",
	),
	newFormat("ISO8601 microseconds", KindDateTime,
		"YYYY-MM-DDThh:mm:ss.uuuuuuZ",
		"YYYY-MM-DD hh:mm:ss.uuuuuuZ",
		"YYYY-MM-DDThh:mm:ss.uuuuuu+HH:II",
		"YYYY-MM-DD hh:mm:ss.uuuuuu+HH:II",
	),
}

var dateFormats = []*Format{
	newFormat("YYYYMMDD", KindDate, "YYYYMMDD"),
	newFormat("YYYYDDMM", KindDate, "YYYYDDMM"),
	newFormat("YYYY/MM/DD", KindDate, "YYYY/MM/DD"),
	newFormat("YYYY/DD/MM", KindDate, "YYYY/DD/MM"),
	newFormat("DD/MM/YYYY", KindDate, "DD/MM/YYYY"),
	newFormat("MM/DD/YYYY", KindDate, "MM/DD/YYYY"),
	newFormat("YYYY-MM-DD", KindDate, "YYYY-MM-DD"),
	newFormat("YYYY-DD-MM", KindDate, "YYYY-DD-MM"),
	newFormat("DD-MM-YYYY", KindDate, "DD-MM-YYYY"),
	newFormat("MM-DD-YYYY", KindDate, "MM-DD-YYYY"),
	newFormat("DD.MM.YYYY", KindDate, "DD.MM.YYYY"),
	newFormat("MM.DD.YYYY", KindDate, "MM.DD.YYYY"),
	newFormat("DD-Mon-YY", KindDate, "DD-NNN-YY"),
	newFormat("D|DD-Mon-YY", KindDate, "D-NNN-YY", "DD-NNN-YY"),
	newFormat("DD-Mon-YYYY", KindDate, "DD-NNN-YYYY"),
	newFormat("D|DD-Mon-YYYY", KindDate, "D-NNN-YYYY", "DD-NNN-YYYY"),
}

var timeFormats = []*Format{
	newFormat("HH:MM:SS.mss", KindTime, "hh:mm:ss.fff"),
	newFormat("HH:MM:SS", KindTime, "hh:mm:ss"),
	newFormat("HH MM SS mss", KindTime, "hh mm ss fff"),
	newFormat("HH MM SS", KindTime, "hh mm ss"),
	newFormat("HH.MM.SS.mss", KindTime, "hh.mm.ss.fff"),
	newFormat("HH.MM.SS", KindTime, "hh.mm.ss"),
	newFormat("HHMM", KindTime, "hhmm"),
	newFormat("HHMMSS", KindTime, "hhmmss"),
	newFormat("HHMMSSmss", KindTime, "hhmmssfff"),
	newFormat("HH:MM:SS.mssTZD", KindTime, "hh:mm:ss.fff+HH:II"),
	newFormat("HH:MM:SSTZD", KindTime, "hh:mm:ss+HH:II"),
	newFormat("HH:MM:SS.mcssTZD", KindTime, "hh:mm:ss.uuuuuu+HH:II"),
	newFormat("HH:MM:SS.mcss", KindTime, "hh:mm:ss.uuuuuu"),
}
