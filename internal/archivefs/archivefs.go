// Package archivefs exposes a mounted archive.Index as a read-only FUSE
// file system, grounded on the teacher's internal/fuse package: the same
// jacobsa/fuse + fuseops/fuseutil stack, the same inode-table-plus-dirent
// shape, and the same "cache forever, the store is immutable" expiration
// policy, generalized from squashfs package images to archive.Index's flat
// path table.
package archivefs

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"
	"golang.org/x/xerrors"

	"github.com/ce2cdb/matcdb/internal/archive"
)

const rootInode = fuseops.RootInodeID

// never matches the teacher's internal/fuse "never" expiration sentinel:
// the mounted archive set is immutable for the life of the process, so the
// kernel can cache every attribute/entry forever.
var never = time.Now().Add(365 * 24 * time.Hour)

// dirent is one directory entry: either a sub-directory or a leaf file
// backed by an archive.FileInfo, matching the teacher's fuse.dirent split
// on linkTarget (here: file != nil) rather than a separate Kind enum.
type dirent struct {
	name  string
	inode fuseops.InodeID
	file  *archive.FileInfo // nil for directories
}

func (d *dirent) typ() fuseutil.DirentType {
	if d.file != nil {
		return fuseutil.DT_File
	}
	return fuseutil.DT_Directory
}

func (d *dirent) mode() os.FileMode {
	if d.file != nil {
		return 0444
	}
	return os.ModeDir | 0555
}

type dir struct {
	entries []*dirent
	byName  map[string]*dirent
}

// FS is a read-only fuseutil.FileSystem view over an archive.Index's flat,
// normalized path table (spec §4.2's "unified virtual filesystem"),
// reached through the mount/ls/cat workflow the teacher's `distri fuse`
// command provides for squashfs images.
type FS struct {
	fuseutil.NotImplementedFileSystem

	idx *archive.Index

	mu       sync.Mutex
	inodeCnt fuseops.InodeID
	dirs     map[fuseops.InodeID]*dir
	inodes   map[fuseops.InodeID]interface{} // *dir or *dirent

	readersMu sync.Mutex
	readers   map[fuseops.InodeID]*io.SectionReader
}

// New builds the directory tree for idx's current file list. Mounting more
// archives into idx after New has no effect; call New again to pick up
// changes.
func New(idx *archive.Index) *FS {
	fs := &FS{
		idx:      idx,
		inodeCnt: rootInode,
		dirs:     make(map[fuseops.InodeID]*dir),
		inodes:   make(map[fuseops.InodeID]interface{}),
		readers:  make(map[fuseops.InodeID]*io.SectionReader),
	}
	root := &dir{byName: make(map[string]*dirent)}
	fs.dirs[rootInode] = root
	fs.inodes[rootInode] = root

	for _, path := range idx.GetFileList() {
		fi, err := idx.Find(path)
		if err != nil {
			continue // path no longer resolves; it is left out of the tree
		}
		fs.insert(path, fi)
	}
	return fs
}

// insert walks path's components, creating intermediate directories as
// needed, and attaches a leaf dirent for fi at the end.
func (fs *FS) insert(path string, fi *archive.FileInfo) {
	parent := fs.dirs[rootInode]
	start := 0
	for i := 0; i <= len(path); i++ {
		if i != len(path) && path[i] != '/' {
			continue
		}
		name := path[start:i]
		start = i + 1
		if name == "" {
			continue
		}
		if i == len(path) {
			fs.addEntry(parent, name, nil, fi)
			return
		}
		child, ok := parent.byName[name]
		if !ok {
			childInode := fs.allocateInode()
			childDir := &dir{byName: make(map[string]*dirent)}
			fs.dirs[childInode] = childDir
			fs.inodes[childInode] = childDir
			child = fs.addEntry(parent, name, &childInode, nil)
		}
		parent = fs.dirs[child.inode]
	}
}

func (fs *FS) addEntry(parent *dir, name string, explicitInode *fuseops.InodeID, fi *archive.FileInfo) *dirent {
	if existing, ok := parent.byName[name]; ok {
		return existing
	}
	var inode fuseops.InodeID
	if explicitInode != nil {
		inode = *explicitInode
	} else {
		inode = fs.allocateInode()
	}
	d := &dirent{name: name, inode: inode, file: fi}
	parent.entries = append(parent.entries, d)
	parent.byName[name] = d
	fs.inodes[inode] = d
	return d
}

func (fs *FS) allocateInode() fuseops.InodeID {
	fs.inodeCnt++
	return fs.inodeCnt
}

// Mount starts serving fs at mountpoint and returns a join function,
// mirroring internal/fuse.Mount's signature so cmd/matcdb can drive it the
// same way the teacher's `distri fuse` subcommand drives squashfs mounts.
func Mount(ctx context.Context, fs *FS, mountpoint string) (join func(context.Context) error, _ error) {
	server := fuseutil.NewFileSystemServer(fs)
	mfs, err := fuse.Mount(mountpoint, server, &fuse.MountConfig{
		FSName:                 "matcdb",
		ReadOnly:               true,
		EnableSymlinkCaching:   true,
		EnableNoOpenSupport:    true,
		EnableNoOpendirSupport: true,
	})
	if err != nil {
		return nil, xerrors.Errorf("archivefs: fuse.Mount: %w", err)
	}
	join = func(ctx context.Context) error {
		return mfs.Join(ctx)
	}
	return join, nil
}

func (fs *FS) StatFS(ctx context.Context, op *fuseops.StatFSOp) error {
	op.BlockSize = 4096
	op.Blocks = 1
	op.IoSize = 65536
	return nil
}

func (fs *FS) LookUpInode(ctx context.Context, op *fuseops.LookUpInodeOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	d, ok := fs.dirs[op.Parent]
	if !ok {
		return fuse.EIO
	}
	entry, ok := d.byName[op.Name]
	if !ok {
		return fuse.ENOENT
	}
	op.Entry.Child = entry.inode
	op.Entry.Attributes = fs.attributesLocked(entry)
	op.Entry.AttributesExpiration = never
	op.Entry.EntryExpiration = never
	return nil
}

func (fs *FS) GetInodeAttributes(ctx context.Context, op *fuseops.GetInodeAttributesOp) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	op.AttributesExpiration = never
	if op.Inode == rootInode {
		op.Attributes = fuseops.InodeAttributes{Nlink: 1, Mode: os.ModeDir | 0555}
		return nil
	}
	x, ok := fs.inodes[op.Inode]
	if !ok {
		return fuse.ENOENT
	}
	if entry, ok := x.(*dirent); ok {
		op.Attributes = fs.attributesLocked(entry)
		return nil
	}
	op.Attributes = fuseops.InodeAttributes{Nlink: 1, Mode: os.ModeDir | 0555}
	return nil
}

// attributesLocked must be called with fs.mu held.
func (fs *FS) attributesLocked(entry *dirent) fuseops.InodeAttributes {
	attr := fuseops.InodeAttributes{Nlink: 1, Mode: entry.mode()}
	if entry.file != nil {
		if size, err := fs.idx.FileSize(entry.file); err == nil {
			attr.Size = uint64(size)
		}
	}
	return attr
}

func (fs *FS) OpenDir(ctx context.Context, op *fuseops.OpenDirOp) error {
	return fuse.ENOSYS
}

func (fs *FS) ReadDir(ctx context.Context, op *fuseops.ReadDirOp) error {
	fs.mu.Lock()
	d, ok := fs.dirs[op.Inode]
	fs.mu.Unlock()
	if !ok {
		return fuse.EIO
	}

	if op.Offset > fuseops.DirOffset(len(d.entries)) {
		return nil
	}
	var n int
	for i := int(op.Offset); i < len(d.entries); i++ {
		entry := d.entries[i]
		written := fuseutil.WriteDirent(op.Dst[n:], fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  entry.inode,
			Name:   entry.name,
			Type:   entry.typ(),
		})
		if written == 0 {
			break
		}
		n += written
	}
	op.BytesRead = n
	return nil
}

func (fs *FS) OpenFile(ctx context.Context, op *fuseops.OpenFileOp) error {
	return fuse.ENOSYS
}

func (fs *FS) ReadFile(ctx context.Context, op *fuseops.ReadFileOp) error {
	fs.readersMu.Lock()
	r, ok := fs.readers[op.Inode]
	fs.readersMu.Unlock()
	if !ok {
		fs.mu.Lock()
		x, exists := fs.inodes[op.Inode]
		fs.mu.Unlock()
		entry, isFile := x.(*dirent)
		if !exists || !isFile || entry.file == nil {
			return fuse.EIO
		}
		data, err := fs.idx.ExtractInPlace(entry.file)
		if err != nil {
			return xerrors.Errorf("archivefs: %w", err)
		}
		r = io.NewSectionReader(byteReaderAt(data), 0, int64(len(data)))
		fs.readersMu.Lock()
		fs.readers[op.Inode] = r
		fs.readersMu.Unlock()
	}
	var err error
	op.BytesRead, err = r.ReadAt(op.Dst, op.Offset)
	if err == io.EOF {
		err = nil
	}
	return err
}

// byteReaderAt adapts a []byte to io.ReaderAt without copying, so ReadFile
// on an in-place-extracted (mmap-backed) entry never copies the archive's
// bytes a second time.
type byteReaderAt []byte

func (b byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(b)) {
		return 0, xerrors.New("archivefs: offset out of range")
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (fs *FS) Destroy() {}
