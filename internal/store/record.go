package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Record pairs a stored value with the key the database assigned to it.
// Records are produced by selects and by InsertRecord; the key always
// reflects what the database actually stored.
type Record[E Entity] struct {
	Key   Key[E]
	Value E
}

// MarshalJSON flattens the value and adds its key under "identifier".
func (r Record[E]) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Value)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("marshal record: value is not an object: %w", err)
	}

	key, err := r.Key.MarshalJSON()
	if err != nil {
		return nil, err
	}
	fields["identifier"] = key

	return json.Marshal(fields)
}

// UnmarshalJSON reads the flattened form produced by MarshalJSON.
// The "identifier" field is required.
func (r *Record[E]) UnmarshalJSON(data []byte) error {
	var identifier struct {
		Identifier *Key[E] `json:"identifier"`
	}
	if err := json.Unmarshal(data, &identifier); err != nil {
		return err
	}
	if identifier.Identifier == nil {
		return errors.New("unmarshal record: missing identifier")
	}

	var value E
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	r.Key = *identifier.Identifier
	r.Value = value
	return nil
}
