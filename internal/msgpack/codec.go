// Package msgpack encodes category schema documents in MessagePack, the form
// in which a foreign caller discovers the tables an adder expects.
package msgpack

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Column describes one expected column.
type Column struct {
	Name       string   `msgpack:"name"`
	Kind       string   `msgpack:"kind"`
	Required   bool     `msgpack:"required"`
	Index      bool     `msgpack:"is_index"`
	EnumValues []string `msgpack:"enum_values,omitempty"`
}

// Table describes one expected input table.
type Table struct {
	Name       string   `msgpack:"name"`
	JoinColumn string   `msgpack:"join_column,omitempty"`
	Optional   bool     `msgpack:"optional"`
	Columns    []Column `msgpack:"columns"`
}

// Category lists the tables of one adder category, primary table first.
type Category struct {
	Name   string  `msgpack:"category"`
	Tables []Table `msgpack:"tables"`
}

// Encode serializes a Go value into MessagePack format.
//
// Example:
//
//	data, err := msgpack.Encode(msgpack.Category{Name: "generators", Tables: tables})
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	return data, nil
}

// Decode deserializes MessagePack data into v, which must be a pointer.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("empty MessagePack data")
	}

	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	return nil
}

// DecodeCategory deserializes a category schema document.
func DecodeCategory(data []byte) (Category, error) {
	var c Category
	if err := Decode(data, &c); err != nil {
		return Category{}, err
	}
	return c, nil
}
