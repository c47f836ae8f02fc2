package archive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// TestFileInfoDeepEquality exercises the teacher's go-cmp assertion style
// against the archive index's per-file record, ignoring the unexported
// source/mapping state a FileInfo never carries directly.
func TestFileInfoDeepEquality(t *testing.T) {
	data := buildBA2GeneralFile(t, "textures/rock.dds", 100, 50, 200)
	idx := NewIndex()
	src := &source{path: "test.ba2"}
	if err := idx.parseBA2(src, 0, data); err != nil {
		t.Fatalf("parseBA2: %v", err)
	}
	got, ok := idx.files["textures/rock.dds"]
	if !ok {
		t.Fatalf("file table = %+v, want textures/rock.dds", idx.files)
	}
	want := &FileInfo{
		Name:         "textures/rock.dds",
		Hash:         hashFileName("textures/rock.dds"),
		ArchiveType:  TypeGeneral,
		ArchiveIndex: 0,
		Offset:       100,
		PackedSize:   50,
		UnpackedSize: 200,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(FileInfo{}, "Texture")); diff != "" {
		t.Errorf("FileInfo mismatch (-want +got):\n%s", diff)
	}
}
