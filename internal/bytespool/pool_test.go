package bytespool

import "testing"

func TestGetReturnsEmptyBuffer(t *testing.T) {
	b := Get()
	b.WriteString("leftover")
	Put(b)

	if got := Get(); got.Len() != 0 {
		t.Errorf("expected an empty buffer got %q", got.String())
	}
}
