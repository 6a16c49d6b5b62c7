package objects

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/KostasZigo/gocaf/internal/constants"
)

// Represents commit author/committer and tag tagger
type Author struct {
	Name      string
	Email     string
	Timestamp time.Time
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>",
		a.Name,
		a.Email)
}

// Validate rejects identities that would break the line-based encoding.
func (a Author) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("author name is required")
	}
	if strings.ContainsAny(a.Name, "<>\n") {
		return fmt.Errorf("author name %q contains forbidden characters", a.Name)
	}
	if strings.ContainsAny(a.Email, "<>\n") {
		return fmt.Errorf("author email %q contains forbidden characters", a.Email)
	}
	return nil
}

// encode renders "<name> <<email>> <unix> <±HHMM>".
func (a Author) encode() string {
	_, offset := a.Timestamp.Zone()
	return fmt.Sprintf("%s <%s> %d %s", a.Name, a.Email, a.Timestamp.Unix(), calculateTimezone(offset))
}

func calculateTimezone(offset int) string {
	// offset is in seconds, convert to ±HHMM format
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	hours := offset / constants.SecondsPerHour
	minutes := (offset % constants.SecondsPerHour) / constants.SecondsPerMinute

	return fmt.Sprintf("%c%02d%02d", sign, hours, minutes)
}

// parseTimezone converts ±HHMM back to an offset in seconds.
func parseTimezone(tz string) (int, error) {
	if len(tz) != 5 || (tz[0] != '+' && tz[0] != '-') {
		return 0, fmt.Errorf("invalid timezone %q", tz)
	}
	hours, err := strconv.ParseUint(tz[1:3], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid timezone hours %q: %w", tz, err)
	}
	minutes, err := strconv.ParseUint(tz[3:5], 10, 8)
	if err != nil || minutes >= 60 {
		return 0, fmt.Errorf("invalid timezone minutes %q", tz)
	}

	offset, err := safecast.Conv[int](hours*constants.SecondsPerHour + minutes*constants.SecondsPerMinute)
	if err != nil {
		return 0, err
	}
	if tz[0] == '-' {
		offset = -offset
	}
	return offset, nil
}

// parseAuthor reverses Author.encode.
func parseAuthor(line string) (Author, error) {
	open := strings.LastIndexByte(line, '<')
	closing := strings.LastIndexByte(line, '>')
	if open < 0 || closing < open {
		return Author{}, fmt.Errorf("%w: invalid identity line %q", ErrMalformedObject, line)
	}

	fields := strings.Fields(line[closing+1:])
	if len(fields) != 2 {
		return Author{}, fmt.Errorf("%w: invalid identity timestamp %q", ErrMalformedObject, line)
	}

	seconds, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Author{}, fmt.Errorf("%w: invalid unix time %q", ErrMalformedObject, fields[0])
	}
	offset, err := parseTimezone(fields[1])
	if err != nil {
		return Author{}, fmt.Errorf("%w: %v", ErrMalformedObject, err)
	}

	return Author{
		Name:      strings.TrimSuffix(line[:open], " "),
		Email:     line[open+1 : closing],
		Timestamp: time.Unix(seconds, 0).In(time.FixedZone("", offset)),
	}, nil
}

// appendMessage writes message and guarantees a trailing newline for non-empty messages.
func appendMessage(buf *strings.Builder, message string) {
	buf.WriteString(message)
	if len(message) > 0 && message[len(message)-1] != '\n' {
		buf.WriteByte('\n')
	}
}

// parseMessage reverses appendMessage so that re-encoding yields identical bytes.
func parseMessage(raw string) string {
	trimmed, found := strings.CutSuffix(raw, "\n")
	if !found || trimmed == "" || strings.HasSuffix(trimmed, "\n") {
		return raw
	}
	return trimmed
}
