// Package chunker splits files into fixed-size compressed blocks identified
// by the SHA-256 of their uncompressed bytes.
package chunker

import (
	"bytes"
	"compress/zlib"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"shard/internal/shardfs"
)

// BlockSize is the fixed window width ChunkFile reads the source in. The
// final window of a file may be shorter; it is never padded.
const BlockSize = 4 * 1024 * 1024 // 4 MiB

// compressionLevel is zlib's default, which compress/flate maps to level 6.
// Identity is hashed over the uncompressed payload, so the level does not
// affect it.
const compressionLevel = zlib.DefaultCompression

// BlockRecord is the transient output of chunking a single file window.
// StoredBytes is stripped before the record's identity/size pair is folded
// into a manifest.
type BlockRecord struct {
	Identity         string
	UncompressedSize int
	StoredBytes      []byte
}

// ChunkFile reads path sequentially in BlockSize windows, compressing and
// hashing each one in file order. The returned slice must be consumed in
// order for reconstruction to be correct.
func ChunkFile(path string) ([]BlockRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, shardfs.IOError("open file for chunking", err)
	}
	defer f.Close()

	var records []BlockRecord
	buf := make([]byte, BlockSize)
	for {
		n, readErr := io.ReadFull(f, buf)
		if n > 0 {
			rec, err := chunkWindow(buf[:n])
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if readErr == io.EOF {
			break
		}
		if readErr == io.ErrUnexpectedEOF {
			// final short window already captured above
			break
		}
		if readErr != nil {
			return nil, shardfs.IOError("read file for chunking", readErr)
		}
	}
	return records, nil
}

func chunkWindow(plain []byte) (BlockRecord, error) {
	sum := sha256.Sum256(plain)
	id := hex.EncodeToString(sum[:])

	var out bytes.Buffer
	w, err := zlib.NewWriterLevel(&out, compressionLevel)
	if err != nil {
		return BlockRecord{}, shardfs.CodecError("init zlib writer", err)
	}
	if _, err := w.Write(plain); err != nil {
		return BlockRecord{}, shardfs.CodecError("compress block", err)
	}
	if err := w.Close(); err != nil {
		return BlockRecord{}, shardfs.CodecError("flush compressed block", err)
	}

	return BlockRecord{
		Identity:         id,
		UncompressedSize: len(plain),
		StoredBytes:      out.Bytes(),
	}, nil
}

// Decompress inverts the zlib compression applied by ChunkFile. Callers
// that need integrity assurance must separately verify
// SHA256(result) == identity (see VerifyIdentity).
func Decompress(stored []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, shardfs.CodecError("open zlib reader", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, shardfs.CodecError("decompress block", err)
	}
	return out, nil
}

// VerifyIdentity recomputes SHA-256 over plain and compares it against the
// expected lowercase-hex identity.
func VerifyIdentity(identity string, plain []byte) error {
	sum := sha256.Sum256(plain)
	if hex.EncodeToString(sum[:]) != identity {
		return shardfs.IntegrityError(identity)
	}
	return nil
}

// DecompressVerified decompresses stored and verifies the result hashes to
// identity, returning an IntegrityError otherwise.
func DecompressVerified(identity string, stored []byte) ([]byte, error) {
	plain, err := Decompress(stored)
	if err != nil {
		return nil, err
	}
	if err := VerifyIdentity(identity, plain); err != nil {
		return nil, err
	}
	return plain, nil
}
