package main

import (
	"fmt"
	"io"
	"os"

	"github.com/awantoch/contentkit/constants"
	"github.com/awantoch/contentkit/convert"
)

// loadVars loads template variables from a JSON/YAML file or an inline
// document. No source yields an empty mapping.
func loadVars(path, inline string) (map[string]any, error) {
	var data []byte
	switch {
	case path != "":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf(constants.ErrReadFileFailed, path, err)
		}
		data = b
	case inline != "":
		data = []byte(inline)
	default:
		return map[string]any{}, nil
	}

	doc, err := convert.Decode(data)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrDecodeVarsFailed, err)
	}
	switch m := doc.(type) {
	case nil:
		return map[string]any{}, nil
	case *convert.Map:
		vars := make(map[string]any, m.Len())
		for pair := m.Oldest(); pair != nil; pair = pair.Next() {
			vars[pair.Key] = pair.Value
		}
		return vars, nil
	default:
		return nil, fmt.Errorf(constants.ErrVarsNotMapping, doc)
	}
}

// readInput returns the named file, or r when no file is given.
func readInput(args []string, r io.Reader) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf(constants.ErrReadFileFailed, args[0], err)
		}
		return data, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf(constants.ErrReadStdinFailed, err)
	}
	return data, nil
}
