package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DocID identifies products, customers and appointments. Locally created
// records always carry a numeric id; records pulled from a remote store keep
// the raw document key when it is not a number.
type DocID struct {
	num int64
	raw string
}

func IntID(n int64) DocID {
	return DocID{num: n}
}

// ParseDocID turns a document key into an id, keeping non-numeric keys as-is.
func ParseDocID(s string) DocID {
	s = strings.TrimSpace(s)
	if s == "" {
		return DocID{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return DocID{num: n}
	}
	return DocID{raw: s}
}

func (id DocID) Int() (int64, bool) {
	if id.raw != "" {
		return 0, false
	}
	return id.num, true
}

func (id DocID) IsZero() bool {
	return id.raw == "" && id.num == 0
}

func (id DocID) String() string {
	if id.raw != "" {
		return id.raw
	}
	if id.num == 0 {
		return ""
	}
	return strconv.FormatInt(id.num, 10)
}

func (id DocID) MarshalJSON() ([]byte, error) {
	if id.raw != "" {
		return json.Marshal(id.raw)
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

func (id *DocID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = DocID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParseDocID(s)
		return nil
	}
	// Remote documents may hand numbers back as floats (e.g. "7.0").
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	if f != float64(int64(f)) {
		*id = DocID{raw: string(data)}
		return nil
	}
	*id = DocID{num: int64(f)}
	return nil
}
