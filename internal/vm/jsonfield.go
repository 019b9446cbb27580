package vm

import (
	"encoding/json"
	"sort"

	"github.com/steveyegge/witchql/internal/kverrors"
)

// extractJSONField parses value as a JSON object and returns the raw
// JSON-encoded text of field, failing if the parse fails or the field is
// absent.
func extractJSONField(value, field string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &obj); err != nil {
		return "", kverrors.NewJSON("value is not a JSON object: %v", err)
	}
	raw, ok := obj[field]
	if !ok {
		return "", kverrors.NewJSON("field %q not present", field)
	}
	return string(raw), nil
}

// sortByStringifiedField sorts output in place by the textual JSON
// representation of each record's field value (stable lexicographic
// ordering by stringified value). Records where the field can't be
// extracted sort as empty string.
func sortByStringifiedField(output []string, field string) {
	key := func(value string) string {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(value), &obj); err != nil {
			return ""
		}
		raw, ok := obj[field]
		if !ok {
			return ""
		}
		return string(raw)
	}
	sort.SliceStable(output, func(i, j int) bool {
		return key(output[i]) < key(output[j])
	})
}
