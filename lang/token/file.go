package token

// File tracks the name and line-start offsets of one source file, so that
// the byte offset recorded on a Span can be rendered back to a Position
// without re-scanning the source.
type File struct {
	name  string
	size  int
	lines []int // byte offset of the start of each line; lines[0] == 0
}

// NewFile creates a File descriptor for a source of the given size.
func NewFile(name string, size int) *File {
	return &File{name: name, size: size, lines: []int{0}}
}

// Name returns the file's name, as given to NewFile.
func (f *File) Name() string { return f.name }

// Size returns the file's byte length, as given to NewFile.
func (f *File) Size() int { return f.size }

// AddLine records that a new line begins at the given byte offset. Offsets
// must be added in increasing order; out-of-order or duplicate offsets are
// ignored.
func (f *File) AddLine(offset int) {
	if n := len(f.lines); n == 0 || f.lines[n-1] < offset {
		f.lines = append(f.lines, offset)
	}
}

// Position resolves a byte offset to a 1-based line/column pair.
func (f *File) Position(offset int) Position {
	line := searchLines(f.lines, offset)
	col := offset - f.lines[line] + 1
	return Position{Filename: f.name, Line: line + 1, Column: col}
}

// searchLines returns the index of the last line whose start offset is <=
// offset.
func searchLines(lines []int, offset int) int {
	lo, hi := 0, len(lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// FileSet is a collection of File descriptors used during one compilation,
// so that diagnostics produced while compiling several source files can all
// be rendered without ambiguity.
type FileSet struct {
	files []*File
}

// NewFileSet creates an empty FileSet.
func NewFileSet() *FileSet { return &FileSet{} }

// AddFile registers a new File of the given name and size with the set and
// returns it.
func (fs *FileSet) AddFile(name string, size int) *File {
	f := NewFile(name, size)
	fs.files = append(fs.files, f)
	return f
}
