package serialize

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/klauspost/compress/zstd"

	"github.com/hugr-lab/gridframe/table"
)

// MaxStreamSize bounds the decompressed size of one incoming stream.
const MaxStreamSize = 1 << 30

// Codec carries zstd compressed IPC streams in both directions: produced
// series and records out, updating tables and records in. One codec serves a
// whole registry and is safe for concurrent use.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCodec creates a codec compressing at level.
// Caller must call Close when done.
func NewCodec(level zstd.EncoderLevel) (*Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxStreamSize))
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

// Close releases the encoder and decoder.
func (c *Codec) Close() error {
	c.dec.Close()
	return c.enc.Close()
}

// EncodeSeries writes series as one compressed IPC stream.
func (c *Codec) EncodeSeries(series []*table.Series, allocator memory.Allocator) ([]byte, error) {
	data, err := SerializeSeries(series, allocator)
	if err != nil {
		return nil, err
	}
	return c.compress(data), nil
}

// EncodeRecord writes rec as a compressed IPC stream.
func (c *Codec) EncodeRecord(rec arrow.Record, allocator memory.Allocator) ([]byte, error) {
	data, err := WriteRecord(rec, allocator)
	if err != nil {
		return nil, err
	}
	return c.compress(data), nil
}

// DecodeTables is ReadTables over a compressed stream.
func (c *Codec) DecodeTables(name string, compressed []byte, allocator memory.Allocator) ([]*table.UpdatingTable, error) {
	data, err := c.decompress(compressed)
	if err != nil {
		return nil, err
	}
	return ReadTables(name, data, allocator)
}

// DecodeRecords is ReadRecords over a compressed stream.
func (c *Codec) DecodeRecords(compressed []byte, allocator memory.Allocator) ([]arrow.Record, error) {
	data, err := c.decompress(compressed)
	if err != nil {
		return nil, err
	}
	return ReadRecords(data, allocator)
}

func (c *Codec) compress(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	// Columnar streams of repeated ids compress well; half is a safe start.
	return c.enc.EncodeAll(data, make([]byte, 0, len(data)/2))
}

func (c *Codec) decompress(compressed []byte) ([]byte, error) {
	if len(compressed) == 0 {
		return nil, fmt.Errorf("compressed stream is empty")
	}
	data, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return data, nil
}
