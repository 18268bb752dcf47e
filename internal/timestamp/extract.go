package timestamp

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// filenameLayouts are the fixed date-then-time patterns tried, in order,
// against a filename with its extension stripped. Cameras in the field emit
// all of these.
var filenameLayouts = []string{
	"2006-01-02_15-04-05",
	"20060102_150405",
	"2006-01-02 15-04-05",
	"20060102150405",
	"2006-01-02_150405",
	"20060102_15-04-05",
	"2006-01-02_15:04:05",
	"2006-01-02 15:04:05",
	"20060102_15:04:05",
}

// filenamePattern is the last-resort extraction: year, month, day, hour,
// minute, and an optional seconds group with loose separators.
var filenamePattern = regexp.MustCompile(`(\d{4})[-_]?(\d{2})[-_]?(\d{2})[-_\s]?(\d{2})[-:]?(\d{2})[-:]?(\d{2})?`)

// hintLayout is the DD-MM-YYYY_HH-MM-SS format the external relay embeds in
// captions.
const hintLayout = "02-01-2006_15-04-05"

// FromUnix converts a feed delivery time (unix seconds) to local wall-clock
// time. Always succeeds.
func FromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).Local()
}

// FromFilename attempts to recover the recording time from a filename. It
// strips the extension, tries each fixed layout, then falls back to the loose
// regex. Reports ok=false when nothing in the name parses as a date/time.
func FromFilename(name string) (time.Time, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))

	for _, layout := range filenameLayouts {
		if parsed, err := time.ParseInLocation(layout, base, time.Local); err == nil {
			return parsed, true
		}
	}

	match := filenamePattern.FindStringSubmatch(base)
	if match == nil {
		return time.Time{}, false
	}
	year := mustAtoi(match[1])
	month := mustAtoi(match[2])
	day := mustAtoi(match[3])
	hour := mustAtoi(match[4])
	minute := mustAtoi(match[5])
	second := 0
	if match[6] != "" {
		second = mustAtoi(match[6])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

// ForFile resolves a recording time for a file on disk. The fallback chain is
// filename patterns, then the file's modification time, then now. It never
// fails. (Go exposes no portable creation time; mtime is the closest signal
// for camera drops that are written once.)
func ForFile(path string) time.Time {
	if parsed, ok := FromFilename(filepath.Base(path)); ok {
		return parsed
	}
	if info, err := os.Stat(path); err == nil {
		return info.ModTime().Local()
	}
	return time.Now()
}

// ParseHint parses the relay's recorded-time caption hint. Reports ok=false
// for empty or malformed input.
func ParseHint(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	parsed, err := time.ParseInLocation(hintLayout, trimmed, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
