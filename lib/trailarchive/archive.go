// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trailarchive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/waypath/lib/codec"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailstore"
)

// ErrBadArchive reports input that is not a readable path archive.
var ErrBadArchive = errors.New("not a valid path archive")

// magic opens every archive.
var magic = [4]byte{'W', 'P', 'A', 'R'}

const (
	formatVersion = 1

	// headerSize: magic, version, compression, uncompressed size,
	// compressed size.
	headerSize = 4 + 1 + 1 + 4 + 4

	// MaxBodySize bounds the uncompressed body an archive may claim.
	MaxBodySize = 256 << 20
)

// entry is one path in the archive body. Records holds the waypoints
// in the same binary stream format as a .path file.
type entry struct {
	Name    string            `cbor:"name"`
	Kind    trail.Kind        `cbor:"kind"`
	Records []byte            `cbor:"records"`
	Digest  trailstore.Digest `cbor:"digest"`
}

type body struct {
	Paths []entry `cbor:"paths"`
}

// Summary describes what Write produced.
type Summary struct {
	Paths            int
	Compression      Compression
	UncompressedSize int
	CompressedSize   int
}

// Write encodes paths as an archive on w. If compression would not
// shrink the body, the body is stored uncompressed and the returned
// summary says so.
func Write(w io.Writer, paths []*trail.Path, compression Compression) (Summary, error) {
	var encoded body
	for _, path := range paths {
		var records bytes.Buffer
		if err := path.Kind().Encode(&records, path.Waypoints()); err != nil {
			return Summary{}, fmt.Errorf("encoding path %q: %w", path.Name(), err)
		}
		encoded.Paths = append(encoded.Paths, entry{
			Name:    path.Name(),
			Kind:    path.Kind(),
			Records: records.Bytes(),
			Digest:  trailstore.SumContents(records.Bytes()),
		})
	}

	raw, err := codec.Marshal(encoded)
	if err != nil {
		return Summary{}, fmt.Errorf("encoding archive body: %w", err)
	}
	if len(raw) > MaxBodySize {
		return Summary{}, fmt.Errorf("archive body is %d bytes, limit is %d", len(raw), MaxBodySize)
	}

	compressed, err := compress(raw, compression)
	if errors.Is(err, errIncompressible) {
		compression = CompressionNone
		compressed = raw
	} else if err != nil {
		return Summary{}, err
	}

	var header [headerSize]byte
	copy(header[:4], magic[:])
	header[4] = formatVersion
	header[5] = byte(compression)
	binary.BigEndian.PutUint32(header[6:10], uint32(len(raw)))
	binary.BigEndian.PutUint32(header[10:14], uint32(len(compressed)))

	if _, err := w.Write(header[:]); err != nil {
		return Summary{}, err
	}
	if _, err := w.Write(compressed); err != nil {
		return Summary{}, err
	}
	return Summary{
		Paths:            len(paths),
		Compression:      compression,
		UncompressedSize: len(raw),
		CompressedSize:   len(compressed),
	}, nil
}

// Read decodes an archive from r and returns its paths in archive
// order. Every path's records are checked against the digest stored
// beside them. Format problems wrap [ErrBadArchive].
func Read(r io.Reader) ([]*trail.Path, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: short header", ErrBadArchive)
		}
		return nil, err
	}
	if !bytes.Equal(header[:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadArchive, header[:4])
	}
	if header[4] != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArchive, header[4])
	}
	compression := Compression(header[5])
	uncompressedSize := binary.BigEndian.Uint32(header[6:10])
	compressedSize := binary.BigEndian.Uint32(header[10:14])
	if uncompressedSize > MaxBodySize || compressedSize > MaxBodySize {
		return nil, fmt.Errorf("%w: body claims %d bytes, limit is %d", ErrBadArchive,
			max(uncompressedSize, compressedSize), MaxBodySize)
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: body truncated", ErrBadArchive)
		}
		return nil, err
	}

	raw, err := decompress(compressed, compression, int(uncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadArchive, err)
	}

	var decoded body
	if err := codec.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %w", ErrBadArchive, err)
	}

	paths := make([]*trail.Path, 0, len(decoded.Paths))
	for _, item := range decoded.Paths {
		if digest := trailstore.SumContents(item.Records); digest != item.Digest {
			return nil, fmt.Errorf("%w: path %q: %w", ErrBadArchive, item.Name, trailstore.ErrDigestMismatch)
		}
		points, err := item.Kind.Decode(bytes.NewReader(item.Records))
		if err != nil {
			return nil, fmt.Errorf("%w: path %q: %w", ErrBadArchive, item.Name, err)
		}
		path, err := trail.New(item.Name, item.Kind, points)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadArchive, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
