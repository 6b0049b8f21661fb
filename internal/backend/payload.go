package backend

import (
	"bytes"
	"encoding/json"
)

// payloadShape names the list envelope a response used.
type payloadShape string

const (
	shapeArray        payloadShape = "array"
	shapeResults      payloadShape = "results"
	shapeSingleArray  payloadShape = "single_array"
	shapeUnrecognized payloadShape = "unrecognized"
)

// listPayload is a normalized list response.
type listPayload struct {
	Items []json.RawMessage
	Next  string
	Shape payloadShape
}

// normalizeList accepts a bare array, a paginated {"results": [...], "next": ...}
// envelope, or an object whose only array-valued field holds the items.
// Anything else yields no items and shapeUnrecognized.
func normalizeList(data []byte) listPayload {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return listPayload{Shape: shapeUnrecognized}
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return listPayload{Shape: shapeUnrecognized}
		}
		return listPayload{Items: items, Shape: shapeArray}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return listPayload{Shape: shapeUnrecognized}
	}

	if raw, ok := obj["results"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			var next string
			if rawNext, ok := obj["next"]; ok {
				_ = json.Unmarshal(rawNext, &next)
			}
			return listPayload{Items: items, Next: next, Shape: shapeResults}
		}
	}

	var found []json.RawMessage
	arrays := 0
	for _, raw := range obj {
		rawTrimmed := bytes.TrimSpace(raw)
		if len(rawTrimmed) == 0 || rawTrimmed[0] != '[' {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(rawTrimmed, &items); err != nil {
			continue
		}
		arrays++
		found = items
	}
	if arrays == 1 {
		return listPayload{Items: found, Shape: shapeSingleArray}
	}
	return listPayload{Shape: shapeUnrecognized}
}
