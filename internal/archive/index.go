package archive

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// magic4 reads a little-endian uint32 out of the first 4 bytes of b, the way
// every container format here tags itself.
func magic4(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

const (
	magicBTDX = 0x58445442 // "BTDX", general/textured BA2
	magicBSA  = 0x00415342 // "BSA\x00", Oblivion+ folder archive
	magicTES3 = 0x00000100 // Morrowind BSA version field doubles as magic
)

// source is one mounted container file: its mapped bytes and whatever
// archive-specific state extraction needs (e.g. the BSA's default
// compression sense).
type source struct {
	path           string
	mapping        *mapping
	bsaVersion     uint32
	bsaCompressed  bool // archive-level default compression flag, Oblivion+ BSA only
}

func (s *source) bytes() []byte {
	if s.mapping == nil {
		return nil
	}
	return s.mapping.data
}

// Index is the mounted view over one or more container files plus loose
// files: a single flat, hash-bucketed file table keyed by normalized path
// (spec §3 "Archive file table", §4.2 "unified virtual filesystem").
type Index struct {
	sources []*source
	files   map[string]*FileInfo
}

// NewIndex returns an empty, unmounted Index.
func NewIndex() *Index {
	return &Index{files: make(map[string]*FileInfo)}
}

// Close releases every memory mapping the Index holds.
func (idx *Index) Close() error {
	var first error
	for _, s := range idx.sources {
		if s.mapping != nil {
			if err := s.mapping.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// MountDir scans dir (non-recursively, matching spec §4.2) for container
// files and loose files, and mounts them in priority order: engine-named
// archives (starfield*/fallout*/skyrim*/oblivion*/seventysix*, excluding any
// name containing "update") are mounted first, in sorted-path order;
// everything else (mod/plain archives) is mounted after, so a mod archive
// always wins a path collision against the base engine content. Loose
// files are mounted last of all, so a loose file always overrides an
// archived one of the same path.
func (idx *Index) MountDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return xerrors.Errorf("archive: read dir %s: %w", dir, err)
	}

	var plain, engine []string
	var looseFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".ba2" && ext != ".bsa" {
			looseFiles = append(looseFiles, name)
			continue
		}
		if isEngineArchiveName(name) {
			engine = append(engine, name)
		} else {
			plain = append(plain, name)
		}
	}
	sort.Strings(plain)
	sort.Strings(engine)

	for _, name := range engine {
		if err := idx.MountFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	for _, name := range plain {
		if err := idx.MountFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	sort.Strings(looseFiles)
	for _, name := range looseFiles {
		idx.mountLooseFile(dir, name)
	}
	return nil
}

var engineArchivePrefixes = []string{"starfield", "fallout", "skyrim", "oblivion", "seventysix"}

func isEngineArchiveName(name string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "update") {
		return false
	}
	for _, p := range engineArchivePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

func (idx *Index) mountLooseFile(dir, name string) {
	rel := NormalizeArchivePath(name)
	idx.files[rel] = &FileInfo{
		Name:        rel,
		Hash:        hashFileName(rel),
		ArchiveType: TypeLoose,
		LoosePath:   filepath.Join(dir, name),
	}
}

// MountFile mounts a single container file, classifying it by its header
// magic and dispatching to the matching format parser.
func (idx *Index) MountFile(path string) error {
	m, err := mmapFile(path)
	if err != nil {
		return err
	}
	data := m.data
	if len(data) < 4 {
		m.Close()
		return xerrors.Errorf("archive: %s: too small to be a container", path)
	}

	src := &source{path: path, mapping: m}
	idx.sources = append(idx.sources, src)
	archiveIndex := len(idx.sources) - 1

	switch magic4(data) {
	case magicBTDX:
		return idx.parseBA2(src, archiveIndex, data)
	case magicBSA:
		return idx.parseBSA(src, archiveIndex, data)
	case magicTES3:
		return idx.parseMorrowindBSA(src, archiveIndex, data)
	default:
		return xerrors.Errorf("archive: %s: unrecognized container magic %08x", path, magic4(data))
	}
}

// insert records fi in the file table, normalizing its name first. A later
// MountFile/MountDir call always overrides an earlier one for the same
// path, which is how MountDir's engine-archives-first priority order
// takes effect: mod archives, mounted after, win any collision.
func (idx *Index) insert(fi *FileInfo) {
	fi.Name = NormalizeArchivePath(fi.Name)
	fi.Hash = hashFileName(fi.Name)
	idx.files[fi.Name] = fi
}
