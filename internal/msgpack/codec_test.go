package msgpack

import "testing"

func TestCategoryRoundTrip(t *testing.T) {
	in := Category{
		Name: "lines",
		Tables: []Table{
			{Name: "lines", Columns: []Column{
				{Name: "id", Kind: "string", Required: true, Index: true},
				{Name: "r", Kind: "double", Required: true},
			}},
			{Name: "current_limits", JoinColumn: "id", Optional: true, Columns: []Column{
				{Name: "side", Kind: "enum", EnumValues: []string{"ONE", "TWO"}},
			}},
		},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	out, err := DecodeCategory(data)
	if err != nil {
		t.Fatalf("DecodeCategory() failed: %v", err)
	}

	if out.Name != "lines" || len(out.Tables) != 2 {
		t.Fatalf("decoded %+v", out)
	}
	limits := out.Tables[1]
	if !limits.Optional || limits.JoinColumn != "id" || len(limits.Columns[0].EnumValues) != 2 {
		t.Errorf("secondary table = %+v", limits)
	}
	if !out.Tables[0].Columns[0].Index {
		t.Error("index flag lost")
	}
}

func TestDecodeKeys(t *testing.T) {
	data, err := Encode(Column{Name: "id", Kind: "string", Index: true})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := Decode(data, &m); err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if m["is_index"] != true || m["kind"] != "string" {
		t.Errorf("unexpected wire keys: %v", m)
	}
	if _, ok := m["enum_values"]; ok {
		t.Error("empty enum values should be omitted")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := DecodeCategory(nil); err == nil {
		t.Error("empty data should fail")
	}
}
