package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema for the "items" or "options" document.
func Schema(document string) ([]byte, error) {
	var v any
	switch document {
	case "items":
		v = &ItemsDocument{}
	case "options":
		v = &OptionsDocument{}
	default:
		return nil, fmt.Errorf("unknown catalog document %q", document)
	}
	r := jsonschema.Reflector{ExpandedStruct: true}
	return json.MarshalIndent(r.Reflect(v), "", "  ")
}
