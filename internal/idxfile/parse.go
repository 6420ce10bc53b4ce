package idxfile

import (
	"bytes"
	"fmt"

	"github.com/wowsunpack/wowsunpack/internal/binreader"
	"github.com/wowsunpack/wowsunpack/internal/xerrors"
)

// Parser decodes one .idx file held entirely in memory.
type Parser struct {
	buf    []byte
	hdr    header
	nodes  map[uint64]node
}

// NewParser wraps buf, the full contents of one .idx file.
func NewParser(buf []byte) *Parser {
	return &Parser{buf: buf}
}

// Parse runs the full decode protocol: header, sanity checks, node table,
// trailer, file-record table. It returns ErrMalformedIdx (wrapped with
// context) for any structural violation.
func (p *Parser) Parse() (*ParseResult, error) {
	if err := p.parseHeader(); err != nil {
		return nil, err
	}
	if err := p.sanityCheck(); err != nil {
		return nil, err
	}
	if err := p.parseNodes(); err != nil {
		return nil, err
	}
	pkgName, err := p.parseTrailer()
	if err != nil {
		return nil, err
	}
	files, err := p.parseFileRecords(pkgName)
	if err != nil {
		return nil, err
	}
	return &ParseResult{PackageName: pkgName, Files: files}, nil
}

func (p *Parser) parseHeader() error {
	if len(p.buf) < headerSize {
		return fmt.Errorf("%w: file too small for header (%d bytes)", xerrors.ErrMalformedIdx, len(p.buf))
	}
	if !bytes.Equal(p.buf[:magicSize], magic[:]) {
		return fmt.Errorf("%w: bad magic %x", xerrors.ErrMalformedIdx, p.buf[:magicSize])
	}

	off := magicSize
	copy(p.hdr.Preamble[:], p.buf[off:off+12])
	off += 12

	nodes, err := binreader.ReadInt32LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading nodes count: %v", xerrors.ErrMalformedIdx, err)
	}
	off += 4

	files, err := binreader.ReadInt32LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading files count: %v", xerrors.ErrMalformedIdx, err)
	}
	off += 4

	reserved1, err := binreader.ReadInt64LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading reserved1: %v", xerrors.ErrMalformedIdx, err)
	}
	off += 8

	reserved2, err := binreader.ReadInt64LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading reserved2: %v", xerrors.ErrMalformedIdx, err)
	}
	off += 8

	thirdOffset, err := binreader.ReadInt64LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading third_offset: %v", xerrors.ErrMalformedIdx, err)
	}
	off += 8

	trailerOffset, err := binreader.ReadInt64LE(p.buf, off)
	if err != nil {
		return fmt.Errorf("%w: reading trailer_offset: %v", xerrors.ErrMalformedIdx, err)
	}

	p.hdr = header{
		Preamble:      p.hdr.Preamble,
		Nodes:         nodes,
		Files:         files,
		Reserved1:     reserved1,
		Reserved2:     reserved2,
		ThirdOffset:   thirdOffset,
		TrailerOffset: trailerOffset,
	}
	return nil
}

func (p *Parser) sanityCheck() error {
	h := p.hdr
	if h.Nodes < 0 || h.Files < 0 {
		return fmt.Errorf("%w: negative table size (nodes=%d files=%d)", xerrors.ErrMalformedIdx, h.Nodes, h.Files)
	}

	n := int64(len(p.buf))
	nodesEnd := int64(h.Nodes)*nodeRecordSize + headerSize
	if nodesEnd > n {
		return fmt.Errorf("%w: node table end %d exceeds file length %d", xerrors.ErrMalformedIdx, nodesEnd, n)
	}

	filesEnd := h.ThirdOffset + relativeBase + int64(h.Files)*fileRecordSize
	if filesEnd > n || filesEnd < 0 {
		return fmt.Errorf("%w: file-record table end %d exceeds file length %d", xerrors.ErrMalformedIdx, filesEnd, n)
	}

	trailerEnd := h.TrailerOffset + relativeBase + trailerPreamble
	if trailerEnd > n || trailerEnd < 0 {
		return fmt.Errorf("%w: trailer end %d exceeds file length %d", xerrors.ErrMalformedIdx, trailerEnd, n)
	}

	if h.TrailerOffset < h.ThirdOffset {
		return fmt.Errorf("%w: trailer offset %d precedes file-record table offset %d", xerrors.ErrMalformedIdx, h.TrailerOffset, h.ThirdOffset)
	}

	return nil
}

// parseNodes decodes the node table at 60 + i*32 for i in 0..Nodes. Nodes
// with an empty name are skipped without error; duplicate ids are a hard
// parse failure.
func (p *Parser) parseNodes() error {
	p.nodes = make(map[uint64]node, p.hdr.Nodes)

	for i := int32(0); i < p.hdr.Nodes; i++ {
		recordOffset := headerSize + int(i)*nodeRecordSize

		namePtr, err := binreader.ReadUint64LE(p.buf, recordOffset+8)
		if err != nil {
			return fmt.Errorf("%w: node %d: reading name_ptr: %v", xerrors.ErrMalformedIdx, i, err)
		}
		id, err := binreader.ReadUint64LE(p.buf, recordOffset+16)
		if err != nil {
			return fmt.Errorf("%w: node %d: reading id: %v", xerrors.ErrMalformedIdx, i, err)
		}
		parentID, err := binreader.ReadUint64LE(p.buf, recordOffset+24)
		if err != nil {
			return fmt.Errorf("%w: node %d: reading parent_id: %v", xerrors.ErrMalformedIdx, i, err)
		}

		if id == parentID {
			return fmt.Errorf("%w: node %d (id %d) is its own parent", xerrors.ErrMalformedIdx, i, id)
		}

		// name_ptr is relative to this record's own absolute offset.
		absNamePtr := recordOffset + int(namePtr)
		name, err := binreader.ReadCString(p.buf, absNamePtr)
		if err != nil {
			if err == xerrors.ErrEmptyString {
				continue
			}
			return fmt.Errorf("%w: node %d: reading name: %v", xerrors.ErrMalformedIdx, i, err)
		}

		if _, exists := p.nodes[id]; exists {
			return fmt.Errorf("%w: duplicate node id %d", xerrors.ErrMalformedIdx, id)
		}
		p.nodes[id] = node{Name: name, ParentID: parentID}
	}

	return nil
}

func (p *Parser) parseTrailer() (string, error) {
	base := int(p.hdr.TrailerOffset) + relativeBase + trailerPreamble
	name, err := binreader.ReadCString(p.buf, base)
	if err != nil {
		return "", fmt.Errorf("%w: reading package name from trailer: %v", xerrors.ErrMalformedIdx, err)
	}
	return name, nil
}

func (p *Parser) parseFileRecords(pkgName string) (map[string]FileRecord, error) {
	base := int(p.hdr.ThirdOffset) + relativeBase
	out := make(map[string]FileRecord, p.hdr.Files)

	for i := int32(0); i < p.hdr.Files; i++ {
		recordOffset := base + int(i)*fileRecordSize

		id, err := binreader.ReadUint64LE(p.buf, recordOffset)
		if err != nil {
			return nil, fmt.Errorf("%w: file record %d: reading id: %v", xerrors.ErrMalformedIdx, i, err)
		}
		offset, err := binreader.ReadInt64LE(p.buf, recordOffset+16)
		if err != nil {
			return nil, fmt.Errorf("%w: file record %d: reading offset: %v", xerrors.ErrMalformedIdx, i, err)
		}
		size, err := binreader.ReadInt32LE(p.buf, recordOffset+32)
		if err != nil {
			return nil, fmt.Errorf("%w: file record %d: reading size: %v", xerrors.ErrMalformedIdx, i, err)
		}
		uncompressedSize, err := binreader.ReadInt64LE(p.buf, recordOffset+40)
		if err != nil {
			return nil, fmt.Errorf("%w: file record %d: reading uncompressed_size: %v", xerrors.ErrMalformedIdx, i, err)
		}

		if int64(size) > uncompressedSize {
			return nil, fmt.Errorf("%w: file record %d: size %d exceeds uncompressed_size %d", xerrors.ErrMalformedIdx, i, size, uncompressedSize)
		}

		path, ok := p.resolvePath(id)
		if !ok {
			// File id is not itself a named node — unnamed file, skip
			// silently; the parent walk would only yield an empty path.
			continue
		}

		out[path] = FileRecord{
			ID:               id,
			Path:             path,
			PkgName:          pkgName,
			Offset:           offset,
			Size:             size,
			UncompressedSize: uncompressedSize,
		}
	}

	return out, nil
}

// resolvePath walks the parent chain of id through the node table,
// terminating when an id is absent from the map (which is how the root is
// reached — some parent ids in the corpus never correspond to a real
// node). The traversed names, reversed, joined with "/", form the path.
func (p *Parser) resolvePath(id uint64) (string, bool) {
	n, ok := p.nodes[id]
	if !ok {
		return "", false
	}

	var segments []string
	seen := make(map[uint64]bool, p.hdr.Nodes)
	cur, curNode := id, n
	for {
		if seen[cur] {
			// Cycle guard: should be unreachable since parseNodes
			// already rejects a node that is its own parent, but a
			// longer cycle through several nodes is still possible.
			break
		}
		seen[cur] = true
		segments = append(segments, curNode.Name)

		next, ok := p.nodes[curNode.ParentID]
		if !ok {
			break
		}
		cur, curNode = curNode.ParentID, next
	}

	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}

	if len(segments) == 0 {
		return "", false
	}
	return joinPath(segments), true
}

func joinPath(segments []string) string {
	total := 0
	for _, s := range segments {
		total += len(s) + 1
	}
	buf := make([]byte, 0, total)
	for i, s := range segments {
		if i > 0 {
			buf = append(buf, '/')
		}
		buf = append(buf, s...)
	}
	return string(buf)
}
