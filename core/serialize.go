package core

import (
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the types persisted in BadgerDB.
// Field order is part of the storage format; append new fields at the end.
// Timestamps are stored as Unix microseconds.

// IDMUS serializes core.ID values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	raw, n, err := varint.Uint64.Unmarshal(bs)
	return ID(raw), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// ChunkMUS serializes Chunk values.
var ChunkMUS = chunkMUS{}

type chunkMUS struct{}

func (chunkMUS) Marshal(v Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.String.Marshal(v.FileHash, bs[n:])
	n += varint.Int.Marshal(v.Page, bs[n:])
	n += marshalStringMap(v.Metadata, bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (v Chunk, n int, err error) {
	var (
		raw uint64
		n1  int
	)
	if raw, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	v.Id = ID(raw)
	if v.Content, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FileHash, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Page, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Metadata, n1, err = unmarshalStringMap(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Vector, n1, err = unmarshalVector(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.InsertedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (chunkMUS) Size(v Chunk) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Content)
	size += ord.String.Size(v.FileHash)
	size += varint.Int.Size(v.Page)
	size += sizeStringMap(v.Metadata)
	size += sizeVector(v.Vector)
	size += sizeTime(v.InsertedAt)
	return size
}

// DocumentRecordMUS serializes DocumentRecord values.
var DocumentRecordMUS = documentRecordMUS{}

type documentRecordMUS struct{}

func (documentRecordMUS) Marshal(v DocumentRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.FileHash, bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += varint.Int.Marshal(int(v.Status), bs[n:])
	n += varint.Int.Marshal(v.ChunkCount, bs[n:])
	n += varint.Int64.Marshal(v.FileSize, bs[n:])
	n += ord.String.Marshal(v.ErrorMessage, bs[n:])
	n += marshalTime(v.UploadedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (documentRecordMUS) Unmarshal(bs []byte) (v DocumentRecord, n int, err error) {
	var (
		status int
		n1     int
	)
	if v.FileHash, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if status, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	v.Status = DocumentStatus(status)
	if v.ChunkCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.FileSize, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.ErrorMessage, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UploadedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (documentRecordMUS) Size(v DocumentRecord) (size int) {
	size = ord.String.Size(v.FileHash)
	size += ord.String.Size(v.Filename)
	size += varint.Int.Size(int(v.Status))
	size += varint.Int.Size(v.ChunkCount)
	size += varint.Int64.Size(v.FileSize)
	size += ord.String.Size(v.ErrorMessage)
	size += sizeTime(v.UploadedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

// ProgressMUS serializes Progress values.
var ProgressMUS = progressMUS{}

type progressMUS struct{}

func (progressMUS) Marshal(v Progress, bs []byte) (n int) {
	n = varint.Int.Marshal(v.Percent, bs)
	n += ord.String.Marshal(v.Message, bs[n:])
	n += ord.String.Marshal(v.Status, bs[n:])
	return n
}

func (progressMUS) Unmarshal(bs []byte) (v Progress, n int, err error) {
	var n1 int
	if v.Percent, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if v.Message, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if v.Status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (progressMUS) Size(v Progress) (size int) {
	size = varint.Int.Size(v.Percent)
	size += ord.String.Size(v.Message)
	size += ord.String.Size(v.Status)
	return size
}

func marshalStringMap(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	for k, v := range m {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	m = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var k, v string
		var n1 int
		if k, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
		if v, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
		m[k] = v
	}
	return m, n, nil
}

func sizeStringMap(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += varint.Uint32.Marshal(math.Float32bits(f), bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var bits uint32
		var n1 int
		if bits, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return nil, n, err
		}
		n += n1
		v[i] = math.Float32frombits(bits)
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	return size
}

func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}
