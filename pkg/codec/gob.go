package codec

import (
	"bytes"
	"encoding/gob"
	"errors"
)

// Gob uses gobinary as codec backend. It is the on-disk format of the
// local index.
type Gob struct{}

const gobName = "gob"

// Name denotes the algorithm used by the codec instance.
func (g Gob) Name() string {
	return gobName
}

// Marshal encodes input data structure into go binaries. A nil input
// encodes to nil.
func (g Gob) Marshal(v interface{}) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	var b bytes.Buffer
	if err := gob.NewEncoder(&b).Encode(v); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal decodes input byte array and populates fields of input data
// structure.
func (g Gob) Unmarshal(data []byte, v interface{}) error {
	if v == nil {
		return ErrNilTarget
	}
	if len(data) == 0 {
		return errors.New("gob: empty input")
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
