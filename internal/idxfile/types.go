// Package idxfile decodes a single .idx sidecar — the binary format
// described in the game's ISFP header, its node table, file-record table,
// and trailer — into a flat map of logical path to file record.
package idxfile

const (
	magicSize       = 4
	headerBodySize  = 56
	headerSize      = magicSize + headerBodySize
	nodeRecordSize  = 32
	fileRecordSize  = 48
	trailerPreamble = 24

	// relativeBase is the fixed offset both header offsets are relative
	// to — byte 16 of the file, i.e. the start of the nodes count.
	relativeBase = 0x10
)

var magic = [magicSize]byte{0x49, 0x53, 0x46, 0x50} // "ISFP"

// header holds the fields decoded from the 56 bytes that follow the magic.
// They cover the first 52 of those bytes; the last 4 (file bytes 56..60)
// are not read.
type header struct {
	Preamble      [12]byte
	Nodes         int32
	Files         int32
	Reserved1     int64
	Reserved2     int64
	ThirdOffset   int64
	TrailerOffset int64
}

// node is one entry of the idx's name table: an id linked to a parent id
// and a name. Nodes with an empty name are dropped during parsing and
// never appear here.
type node struct {
	Name     string
	ParentID uint64
}

// FileRecord identifies one payload inside the owning package file, plus
// the logical path it was resolved to by walking the node table's parent
// chain.
type FileRecord struct {
	ID               uint64
	Path             string
	PkgName          string
	Offset           int64
	Size             int32
	UncompressedSize int64
}

// Stored reports whether the payload is stored verbatim (as opposed to
// raw-DEFLATE compressed).
func (r FileRecord) Stored() bool {
	return int64(r.Size) == r.UncompressedSize
}

// ParseResult is the decoded output of a single .idx file.
type ParseResult struct {
	PackageName string
	Files       map[string]FileRecord
}
