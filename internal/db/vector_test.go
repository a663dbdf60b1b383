package db

import (
	"bytes"
	"testing"
)

func TestEncodeVector(t *testing.T) {
	got := EncodeVector([]float32{1, -2})
	want := []byte{0x00, 0x00, 0x80, 0x3f, 0x00, 0x00, 0x00, 0xc0}
	if !bytes.Equal(got, want) {
		t.Errorf("EncodeVector = % x, want % x", got, want)
	}

	back, err := DecodeVector(got)
	if err != nil || len(back) != 2 || back[0] != 1 || back[1] != -2 {
		t.Errorf("DecodeVector = %v, %v", back, err)
	}
}

func TestDecodeVector_Truncated(t *testing.T) {
	if _, err := DecodeVector(make([]byte, 7)); err == nil {
		t.Error("expected error")
	}
	if v, err := DecodeVector(nil); err != nil || len(v) != 0 {
		t.Errorf("empty blob: %v, %v", v, err)
	}
}
