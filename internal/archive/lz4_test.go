package archive

import "testing"

func TestDecompressLZ4BlockLiteralOnly(t *testing.T) {
	// token: litLen=5 (high nibble), matchLen=0 (low nibble, unused since the
	// block ends right after the literal run)
	src := []byte{0x50, 'H', 'e', 'l', 'l', 'o'}
	dst := make([]byte, 5)
	n, err := decompressLZ4Block(dst, src)
	if err != nil {
		t.Fatalf("decompressLZ4Block: %v", err)
	}
	if n != 5 || string(dst[:n]) != "Hello" {
		t.Errorf("decompressLZ4Block() = %q, %d, want %q, 5", dst[:n], n, "Hello")
	}
}

func TestDecompressLZ4BlockWithBackReference(t *testing.T) {
	// literal "abc", then a match copying 4 bytes from offset 3 ("abca"),
	// producing "abcabca"
	src := []byte{0x30, 'a', 'b', 'c', 3, 0}
	dst := make([]byte, 7)
	n, err := decompressLZ4Block(dst, src)
	if err != nil {
		t.Fatalf("decompressLZ4Block: %v", err)
	}
	want := "abcabca"
	if n != len(want) || string(dst[:n]) != want {
		t.Errorf("decompressLZ4Block() = %q, %d, want %q, %d", dst[:n], n, want, len(want))
	}
}

func TestDecompressLZ4BlockExtendedLiteralLength(t *testing.T) {
	// litLen nibble = 15 (extend), followed by one continuation byte of 2,
	// for a total literal length of 15+2=17
	lit := make([]byte, 17)
	for i := range lit {
		lit[i] = byte('a' + i%26)
	}
	src := append([]byte{0xF0, 2}, lit...)
	dst := make([]byte, 17)
	n, err := decompressLZ4Block(dst, src)
	if err != nil {
		t.Fatalf("decompressLZ4Block: %v", err)
	}
	if n != 17 || string(dst[:n]) != string(lit) {
		t.Errorf("decompressLZ4Block() = %q, want %q", dst[:n], lit)
	}
}

func TestDecompressLZ4BlockRejectsInvalidMatchOffset(t *testing.T) {
	// match offset 0 is never valid
	src := []byte{0x30, 'a', 'b', 'c', 0, 0}
	dst := make([]byte, 7)
	if _, err := decompressLZ4Block(dst, src); err == nil {
		t.Fatal("decompressLZ4Block with offset 0 succeeded, want error")
	}
}

func TestDecompressLZ4BlockRejectsOverrun(t *testing.T) {
	src := []byte{0x50, 'H', 'e', 'l', 'l', 'o'}
	dst := make([]byte, 2) // too small for the 5-byte literal run
	if _, err := decompressLZ4Block(dst, src); err == nil {
		t.Fatal("decompressLZ4Block into undersized dst succeeded, want error")
	}
}
