package codec

import (
	"encoding/json"
	"errors"
)

// JSON encodes values as UTF-8 JSON. It is used for every payload that
// leaves the process.
type JSON struct{}

const jsonName = "json"

// Name denotes the algorithm used by the codec instance.
func (j JSON) Name() string {
	return jsonName
}

// Marshal encodes v as compact JSON. A nil input encodes to nil.
func (j JSON) Marshal(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Unmarshal decodes JSON data into v.
func (j JSON) Unmarshal(data []byte, v interface{}) error {
	if v == nil {
		return ErrNilTarget
	}
	if len(data) == 0 {
		return errors.New("json: empty input")
	}
	return json.Unmarshal(data, v)
}
