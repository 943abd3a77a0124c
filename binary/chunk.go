package binary

import (
	"encoding/binary"
	"fmt"

	lz4 "github.com/bkaradzic/go-lz4"
	"github.com/anaminus/parse"
)

// chunkSignature identifies a chunk's kind by its 4-byte ASCII name, stored
// little-endian the way the teacher format does.
type chunkSignature uint32

func sigOf(name string) chunkSignature {
	return chunkSignature(binary.LittleEndian.Uint32([]byte(name)))
}

var (
	sigMETA = sigOf("META")
	sigINST = sigOf("INST")
	sigPROP = sigOf("PROP")
	sigPRNT = sigOf("PRNT")
	sigEND  = sigOf("END\x00")
)

func (s chunkSignature) String() string {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(s))
	return string(b[:])
}

// rawChunk is a length-framed, optionally LZ4-compressed chunk body. The
// framing always records both compressed and uncompressed sizes; a zero
// compressed size means the payload that follows is uncompressed.
type rawChunk struct {
	signature  chunkSignature
	compressed bool
	payload    []byte
}

func (c *rawChunk) decode(fr *parse.BinaryReader) bool {
	var sig uint32
	if fr.Number(&sig) {
		return true
	}
	c.signature = chunkSignature(sig)

	var compressedLen uint32
	if fr.Number(&compressedLen) {
		return true
	}
	var decompressedLen uint32
	if fr.Number(&decompressedLen) {
		return true
	}
	var reserved uint32
	if fr.Number(&reserved) {
		return true
	}

	c.payload = make([]byte, decompressedLen)
	if compressedLen == 0 {
		c.compressed = false
		if fr.Bytes(c.payload) {
			return true
		}
		return false
	}

	c.compressed = true
	compressedData := make([]byte, compressedLen+4)
	binary.LittleEndian.PutUint32(compressedData, decompressedLen)
	if fr.Bytes(compressedData[4:]) {
		return true
	}
	if _, err := lz4.Decode(c.payload, compressedData); err != nil {
		fr.Add(0, fmt.Errorf("binary: lz4: %w", err))
		return true
	}
	return false
}

func (c *rawChunk) writeTo(fw *parse.BinaryWriter) bool {
	if fw.Number(uint32(c.signature)) {
		return true
	}

	if !c.compressed || c.signature == sigEND {
		if fw.Number(uint32(0)) { // compressed length
			return true
		}
		if fw.Number(uint32(len(c.payload))) {
			return true
		}
		if fw.Number(uint32(0)) { // reserved
			return true
		}
		return fw.Bytes(c.payload)
	}

	var compressedData []byte
	compressedData, err := lz4.Encode(compressedData, c.payload)
	if fw.Add(0, err) {
		return true
	}
	compressedPayload := compressedData[4:]

	if fw.Number(uint32(len(compressedPayload))) {
		return true
	}
	if fw.Number(uint32(len(c.payload))) {
		return true
	}
	if fw.Number(uint32(0)) { // reserved
		return true
	}
	return fw.Bytes(compressedPayload)
}
