package coach

import "testing"

func TestExtractPayloadPlainObject(t *testing.T) {
	out, err := ExtractPayload(`{"output_text":"hello"}`)
	if err != nil {
		t.Fatalf("ExtractPayload: %v", err)
	}
	if out["output_text"] != "hello" {
		t.Fatalf("payload = %v", out)
	}
}

func TestExtractPayloadFencedOutput(t *testing.T) {
	raw := "Sure, here is the turn:\n```json\n{\"output_text\":\"hi\",\"risk_level\":\"none\"}\n```\nLet me know."
	out, err := ExtractPayload(raw)
	if err != nil {
		t.Fatalf("ExtractPayload: %v", err)
	}
	if out["output_text"] != "hi" {
		t.Fatalf("payload = %v", out)
	}
}

func TestExtractPayloadNoObject(t *testing.T) {
	if _, err := ExtractPayload("no json here"); err == nil {
		t.Fatalf("expected error for object-free output")
	}
}

func TestExtractPayloadNullBecomesEmptyMap(t *testing.T) {
	out, err := ExtractPayload("null")
	if err != nil {
		t.Fatalf("ExtractPayload: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("payload = %v, want empty map", out)
	}
}
