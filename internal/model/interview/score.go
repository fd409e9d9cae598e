package interview

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Score is a loosely typed score as returned by the interview backend. The
// backend mixes representations freely ("82/100", "4/5", 82, "N/A", null),
// so the raw value is kept verbatim and interpreted on demand.
type Score string

// UnmarshalJSON accepts strings, numbers and null.
func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Score(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = Score(num.String())
	return nil
}

// MarshalJSON renders the score as the string it was received as.
func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// Int parses the leading integer of the score, so "8/100" yields 8 and
// "N/A" yields 0. Mirrors how the dashboard has always read these values.
func (s Score) Int() int {
	value := strings.TrimSpace(string(s))
	end := 0
	if end < len(value) && (value[end] == '+' || value[end] == '-') {
		end++
	}
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0
	}
	return n
}

// IsZero reports whether no score was provided.
func (s Score) IsZero() bool {
	return strings.TrimSpace(string(s)) == ""
}
