package curseforge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

var (
	errUnknownField = errors.New("unknown field")
	errMissingField = errors.New("missing required field")
	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
	rawMessageType  = reflect.TypeOf(json.RawMessage(nil))
)

// decodeStrict unmarshals body into v, rejecting unknown keys at any depth
// and required fields that are absent or null.
func decodeStrict(body []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodeError{Err: fmt.Errorf("decode target must be a non-nil pointer, got %T", v)}
	}
	if err := checkSchema(body, rv.Type().Elem(), ""); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return de
		}
		return &DecodeError{Err: err}
	}
	return nil
}

type schemaField struct {
	typ      reflect.Type
	optional bool
}

// checkSchema walks raw alongside t. Types with their own JSON decoding are
// leaves and are validated by running that decoding.
func checkSchema(raw json.RawMessage, t reflect.Type, path string) error {
	if t == rawMessageType || t.Kind() == reflect.Interface {
		return nil
	}
	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(unmarshalerType) {
		target := reflect.New(t).Interface().(json.Unmarshaler)
		if err := target.UnmarshalJSON(raw); err != nil {
			return withPath(err, path)
		}
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if isNull(raw) {
			return nil
		}
		return checkSchema(raw, t.Elem(), path)

	case reflect.Struct:
		if isNull(raw) {
			return &DecodeError{Path: path, Err: errMissingField}
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		fields := schemaFields(t)

		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, ok := fields[key]; !ok {
				return &DecodeError{Path: joinPath(path, key), Err: errUnknownField}
			}
		}

		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			f := fields[name]
			value, ok := obj[name]
			if !ok || isNull(value) {
				if f.optional {
					continue
				}
				return &DecodeError{Path: joinPath(path, name), Err: errMissingField}
			}
			if err := checkSchema(value, f.typ, joinPath(path, name)); err != nil {
				return err
			}
		}

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		if items == nil {
			return &DecodeError{Path: path, Err: errMissingField}
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if isNull(item) && t.Elem().Kind() != reflect.Pointer {
				return &DecodeError{Path: itemPath, Err: errMissingField}
			}
			if err := checkSchema(item, t.Elem(), itemPath); err != nil {
				return err
			}
		}

	case reflect.Map:
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return &DecodeError{Path: path, Err: err}
		}
		for key, value := range m {
			if err := checkSchema(value, t.Elem(), joinPath(path, key)); err != nil {
				return err
			}
		}

	default:
		// Scalars: let encoding/json report type mismatches with a path.
		target := reflect.New(t).Interface()
		if err := json.Unmarshal(raw, target); err != nil {
			return &DecodeError{Path: path, Text: string(raw), Err: err}
		}
	}
	return nil
}

func schemaFields(t reflect.Type) map[string]schemaField {
	fields := make(map[string]schemaField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		fields[name] = schemaField{
			typ:      sf.Type,
			optional: sf.Type.Kind() == reflect.Pointer || strings.Contains(opts, "omitempty"),
		}
	}
	return fields
}

func withPath(err error, path string) error {
	var de *DecodeError
	if errors.As(err, &de) {
		if de.Path == "" {
			de.Path = path
		}
		return de
	}
	return &DecodeError{Path: path, Err: err}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
