package models

import (
	"reflect"
	"strings"

	"github.com/goccy/go-json"
)

// memberSet describes the JSON members a record type declares.
type memberSet struct {
	// byFold maps the lower-cased member name to the struct field index.
	byFold map[string]int
	names  map[int]string
}

// declaredMembers returns the JSON members declared on the struct type of v.
func declaredMembers(v interface{}) memberSet {
	t := reflect.TypeOf(v)
	set := memberSet{
		byFold: make(map[string]int, t.NumField()),
		names:  make(map[int]string, t.NumField()),
	}

	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		set.byFold[strings.ToLower(name)] = i
		set.names[i] = name
	}

	return set
}

// leftovers returns what the typed fields of decoded cannot reproduce from
// data: members that are not declared, and declared members that were sent
// with an empty value and would be dropped by omitempty. Declared members
// match case-insensitively, like the decoder, and are keyed by their declared
// name. A null declared member is treated as absent. It returns nil when
// there is nothing left over.
func (s memberSet) leftovers(data []byte, decoded interface{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}

	v := reflect.ValueOf(decoded)

	var extra map[string]json.RawMessage
	keep := func(k string, raw json.RawMessage) {
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = raw
	}

	for k, raw := range all {
		i, ok := s.byFold[strings.ToLower(k)]
		if !ok {
			keep(k, raw)
			continue
		}

		if string(raw) == "null" || !isEmptyValue(v.Field(i)) {
			continue
		}
		keep(s.names[i], raw)
	}

	return extra, nil
}

// isEmptyValue reports whether omitempty drops v.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}

	return false
}

// withExtra merges extra members into an encoded JSON object. Members already
// encoded win over extra members of the same name.
func withExtra(encoded []byte, extra map[string]json.RawMessage) ([]byte, error) {
	if len(extra) == 0 {
		return encoded, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &merged); err != nil {
		return nil, err
	}

	for k, v := range extra {
		if _, ok := merged[k]; ok {
			continue
		}
		merged[k] = v
	}

	return json.Marshal(merged)
}
