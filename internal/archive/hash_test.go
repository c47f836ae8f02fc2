package archive

import "testing"

func TestNormalizeArchivePath(t *testing.T) {
	cases := []struct{ in, want string }{
		{`Foo\Bar.DDS`, "foo/bar.dds"},
		{"normal/path.txt", "normal/path.txt"},
		{"colon:path", "colon_path"},
		{"ctrl\x01char", "ctrl_char"},
	}
	for _, c := range cases {
		if got := NormalizeArchivePath(c.in); got != c.want {
			t.Errorf("NormalizeArchivePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestHashFileNameDeterministicAndVaries(t *testing.T) {
	a := hashFileName(NormalizeArchivePath("textures/rock/diffuse.dds"))
	b := hashFileName(NormalizeArchivePath("textures/rock/diffuse.dds"))
	if a != b {
		t.Fatalf("hashFileName not deterministic: %#x vs %#x", a, b)
	}
	c := hashFileName(NormalizeArchivePath("textures/rock/normal.dds"))
	if a == c {
		t.Errorf("hashFileName collided for different paths")
	}
}

func TestHashFileNameHandlesShortAndLongInputs(t *testing.T) {
	for _, s := range []string{"", "a", "ab", "abc", "abcd", "abcdefg", "abcdefgh", "abcdefghi"} {
		// must not panic across every byte-length tail case in the folding loop
		_ = hashFileName(s)
	}
}
