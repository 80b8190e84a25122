//go:build !nojsonsimd

// Package jsonx decodes telemetry payloads; sonic by default, encoding/json with the nojsonsimd tag.
package jsonx

import "github.com/bytedance/sonic"

var fastJSON = sonic.ConfigDefault

func Unmarshal(data []byte, v interface{}) error {
	return fastJSON.Unmarshal(data, v)
}

func Marshal(v interface{}) ([]byte, error) {
	return fastJSON.Marshal(v)
}
