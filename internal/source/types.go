package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates the on-disk file started with a byte-order mark.
	FileHadBOM
)

// Encoding names the on-disk encoding a file was decoded from.
// Content is always held as UTF-8 in memory; Encode restores the original.
type Encoding uint8

const (
	EncUTF8 Encoding = iota
	EncUTF16LE
	EncUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncUTF8:
		return "utf-8"
	case EncUTF16LE:
		return "utf-16le"
	case EncUTF16BE:
		return "utf-16be"
	}
	return "unknown"
}

// File captures metadata and content for a single source file.
// Content is the decoded UTF-8 text with any BOM stripped; line endings
// are kept exactly as read so byte offsets stay valid for rewriting.
type File struct {
	ID       FileID
	Path     string
	Content  []byte
	LineIdx  []uint32
	Hash     [32]byte
	Flags    FileFlags
	Encoding Encoding
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
