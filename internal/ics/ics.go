// Package ics reads and writes the small subset of iCalendar (RFC 5545)
// needed to put planned tasks on a calendar: one VCALENDAR holding VEVENTs
// with floating local start and end times.
package ics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/lifereset/internal/planner"
)

// TimeLayout is the floating date-time form YYYYMMDDTHHMMSS.
const TimeLayout = "20060102T150405"

const (
	maxLineOctets = 75
	uidDomain     = "lifereset"
)

// Calendar is a VCALENDAR object.
type Calendar struct {
	ProdID string
	Events []Event
}

// Event is a VEVENT.
type Event struct {
	UID         string
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NewUID returns a fresh globally unique event identifier.
func NewUID() string {
	return uuid.NewString() + "@" + uidDomain
}

// FromBlocks turns scheduled blocks into events. Blocks without notes get
// fallback as their description.
func FromBlocks(blocks []planner.Block, fallback string) []Event {
	events := make([]Event, 0, len(blocks))
	for _, b := range blocks {
		desc := b.Task.Notes
		if desc == "" {
			desc = fallback
		}
		events = append(events, Event{
			UID:         NewUID(),
			Start:       b.Start,
			End:         b.End,
			Summary:     b.Task.Title,
			Description: desc,
		})
	}
	return events
}

// Encode writes cal in iCalendar text form. Lines end in LF; long lines are
// folded at 75 octets.
func Encode(w io.Writer, cal Calendar) error {
	bw := bufio.NewWriter(w)
	write := func(name, value string) {
		writeFolded(bw, name+":"+value)
	}

	write("BEGIN", "VCALENDAR")
	write("VERSION", "2.0")
	write("PRODID", cal.ProdID)
	for _, e := range cal.Events {
		write("BEGIN", "VEVENT")
		if e.UID != "" {
			write("UID", escapeText(e.UID))
		}
		write("DTSTART", e.Start.Format(TimeLayout))
		write("DTEND", wallEnd(e).Format(TimeLayout))
		write("SUMMARY", escapeText(e.Summary))
		write("DESCRIPTION", escapeText(e.Description))
		write("END", "VEVENT")
	}
	write("END", "VCALENDAR")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// wallEnd is the start's wall clock advanced by the event duration. DTEND
// is floating, so it must not move back when the zone offset changes
// inside the event.
func wallEnd(e Event) time.Time {
	s := e.Start
	naive := time.Date(s.Year(), s.Month(), s.Day(), s.Hour(), s.Minute(), s.Second(), s.Nanosecond(), time.UTC)
	return naive.Add(e.Duration())
}

// Marshal returns cal in iCalendar text form.
func Marshal(cal Calendar) string {
	var sb strings.Builder
	_ = Encode(&sb, cal) // strings.Builder never fails
	return sb.String()
}

// Decode parses a VCALENDAR. Floating times are read in loc; times with a
// trailing Z are UTC. Unknown properties and components are skipped.
func Decode(r io.Reader, loc *time.Location) (Calendar, error) {
	lines, err := unfold(r)
	if err != nil {
		return Calendar{}, err
	}

	var (
		cal     Calendar
		cur     *Event
		sawCal  bool
		depth   int
		lineNum int
	)
	for _, line := range lines {
		lineNum++
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return Calendar{}, fmt.Errorf("line %d: missing ':' in %q", lineNum, line)
		}
		name, _, _ = strings.Cut(name, ";")
		name = strings.ToUpper(name)

		switch {
		case name == "BEGIN" && strings.EqualFold(value, "VCALENDAR"):
			sawCal = true
		case name == "BEGIN" && strings.EqualFold(value, "VEVENT"):
			cur = &Event{}
		case name == "END" && strings.EqualFold(value, "VEVENT"):
			if cur == nil {
				return Calendar{}, fmt.Errorf("line %d: END:VEVENT without BEGIN", lineNum)
			}
			cal.Events = append(cal.Events, *cur)
			cur = nil
		case name == "BEGIN":
			depth++
		case name == "END" && !strings.EqualFold(value, "VCALENDAR"):
			depth--
		case depth > 0:
			// inside an unsupported sub-component such as VALARM
		case cur == nil && name == "PRODID":
			cal.ProdID = value
		case cur != nil:
			if err := setEventProperty(cur, name, value, loc); err != nil {
				return Calendar{}, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
	}

	if !sawCal {
		return Calendar{}, errors.New("no VCALENDAR found")
	}
	if cur != nil {
		return Calendar{}, errors.New("unterminated VEVENT")
	}
	return cal, nil
}

func setEventProperty(e *Event, name, value string, loc *time.Location) error {
	var err error
	switch name {
	case "UID":
		e.UID = unescapeText(value)
	case "DTSTART":
		e.Start, err = parseTime(value, loc)
	case "DTEND":
		e.End, err = parseTime(value, loc)
	case "SUMMARY":
		e.Summary = unescapeText(value)
	case "DESCRIPTION":
		e.Description = unescapeText(value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func parseTime(value string, loc *time.Location) (time.Time, error) {
	if v, ok := strings.CutSuffix(value, "Z"); ok {
		return time.ParseInLocation(TimeLayout, v, time.UTC)
	}
	return time.ParseInLocation(TimeLayout, value, loc)
}

var (
	textEscaper   = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)
	textUnescaper = strings.NewReplacer(`\\`, `\`, `\;`, ";", `\,`, ",", `\n`, "\n", `\N`, "\n")
)

func escapeText(s string) string   { return textEscaper.Replace(s) }
func unescapeText(s string) string { return textUnescaper.Replace(s) }

// writeFolded writes line, folding it into continuation lines (leading
// space) so no physical line exceeds 75 octets. Folds never split a UTF-8
// sequence.
func writeFolded(w *bufio.Writer, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !isRuneStart(line[cut]) {
			cut--
		}
		_, _ = w.WriteString(line[:cut])
		_, _ = w.WriteString("\n ")
		line = line[cut:]
		limit = maxLineOctets - 1
	}
	_, _ = w.WriteString(line)
	_ = w.WriteByte('\n')
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// unfold reads physical lines (LF or CRLF) and joins continuation lines.
func unfold(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) && len(lines) > 0 {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	return lines, nil
}
