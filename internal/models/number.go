package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an integer payload field that also accepts a numeric string, as
// sent by form-driven clients ("unitsNeeded":"2"). Unparseable values decode to zero.
type Number int

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if v, err := strconv.Atoi(s); err == nil {
		*n = Number(v)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		*n = Number(int(f))
		return nil
	}
	*n = 0
	return nil
}

func (n Number) Int() int { return int(n) }
