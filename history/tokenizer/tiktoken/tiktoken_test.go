package tiktoken

import "testing"

func TestEncode(t *testing.T) {
	tok, err := New("")
	if err != nil {
		// The encoding dictionary is fetched on first use; without it
		// (offline CI) there is nothing meaningful to assert.
		t.Skipf("encoding unavailable: %v", err)
	}

	ids := tok.Encode("hello world")
	if len(ids) == 0 {
		t.Error("Encode returned no tokens for non-empty text")
	}
	if n := len(tok.Encode("")); n != 0 {
		t.Errorf("Encode of empty text = %d tokens, want 0", n)
	}
}
