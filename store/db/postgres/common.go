package postgres

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hrygo/facesense/store"
)

// placeholder returns a numbered placeholder for PostgreSQL (uses $1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n numbered placeholders for PostgreSQL
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// marshalBoxes encodes a bounding box list to its JSON payload column.
func marshalBoxes(boxes []store.BoundingBox) (string, error) {
	if boxes == nil {
		boxes = []store.BoundingBox{}
	}
	buf, err := json.Marshal(boxes)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// unmarshalBoxes decodes the JSON payload column into a bounding box list.
// An empty column yields an empty list, never nil.
func unmarshalBoxes(payload string) ([]store.BoundingBox, error) {
	boxes := []store.BoundingBox{}
	if payload == "" {
		return boxes, nil
	}
	if err := json.Unmarshal([]byte(payload), &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// marshalStrings encodes a string list to its JSON text column.
func marshalStrings(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	buf, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// unmarshalStrings decodes the JSON text column into a string list.
func unmarshalStrings(payload string) ([]string, error) {
	list := []string{}
	if payload == "" {
		return list, nil
	}
	if err := json.Unmarshal([]byte(payload), &list); err != nil {
		return nil, err
	}
	return list, nil
}
