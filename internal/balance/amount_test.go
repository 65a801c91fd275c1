package balance

import (
	"encoding/json"
	"testing"
)

func TestAmountPtrRoundTrip(t *testing.T) {
	if Unknown.Ptr() != nil {
		t.Fatal("expected nil pointer for unknown amount")
	}
	p := Of(12).Ptr()
	if p == nil || *p != 12 {
		t.Fatalf("expected pointer to 12, got %v", p)
	}
	if FromPtr(p) != Of(12) || FromPtr(nil) != Unknown {
		t.Fatal("FromPtr mismatch")
	}
	if Unknown.String() != "unknown" || Of(-3).String() != "-3" {
		t.Fatalf("unexpected strings %q %q", Unknown.String(), Of(-3).String())
	}
}

func TestAmountJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}{A: Of(30), B: Unknown})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"a":30,"b":null}` {
		t.Fatalf("unexpected payload %s", payload)
	}

	var decoded struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.A != Of(30) || decoded.B != Unknown {
		t.Fatalf("unexpected decode %+v", decoded)
	}
}
