package harvest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// jsonObject builds a JSON object whose fields keep their insertion order.
// Its zero value is an empty object. The first error is kept and returned
// by MarshalJSON.
type jsonObject struct {
	fields []jsonField
	err    error
}

type jsonField struct {
	key   string
	value json.RawMessage
}

// Append adds the field key with the JSON encoding of value.
func (o *jsonObject) Append(key string, value any) {
	if o.err != nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		o.err = fmt.Errorf("failed to marshal %q: %w", key, err)
		return
	}
	o.fields = append(o.fields, jsonField{key: key, value: raw})
}

// Optional adds the field only if value is not the zero value of its type.
func (o *jsonObject) Optional(key string, value any) {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return
	}
	o.Append(key, value)
}

// Flatten adds every field of v, which must encode as a JSON object, in
// their encoded order.
func (o *jsonObject) Flatten(v any) {
	if o.err != nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		o.err = fmt.Errorf("failed to flatten %T: %w", v, err)
		return
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		o.err = fmt.Errorf("failed to flatten %T: not a JSON object", v)
		return
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			o.err = fmt.Errorf("failed to flatten %T: %w", v, err)
			return
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			o.err = fmt.Errorf("failed to flatten %T: %w", v, err)
			return
		}
		o.fields = append(o.fields, jsonField{key: tok.(string), value: value})
	}
}

func (o *jsonObject) MarshalJSON() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
