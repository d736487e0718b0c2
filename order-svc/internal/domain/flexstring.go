package domain

import (
	"bytes"
	"encoding/json"
)

// FlexString decodes loosely typed client text. Strings pass through, numbers
// keep their literal form, true becomes "1" and anything else decodes to "".
// Like FlexInt it never fails.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	*f = ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*f = FlexString(s)
	case 't':
		*f = "1"
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
