//go:build nojsonsimd

// Package jsonx decodes telemetry payloads; sonic by default, encoding/json with the nojsonsimd tag.
package jsonx

import stdjson "encoding/json"

func Unmarshal(data []byte, v interface{}) error {
	return stdjson.Unmarshal(data, v)
}

func Marshal(v interface{}) ([]byte, error) {
	return stdjson.Marshal(v)
}
