// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"slices"
	"time"

	"github.com/Ajay-Krishna00/CosmoGraph/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// formatVersion prefixes every encoded record.
const formatVersion byte = 1

// serializer is the method set shared by mus-go's typed serializers.
type serializer[T any] interface {
	Marshal(v T, bs []byte) (n int)
	Unmarshal(bs []byte) (v T, n int, err error)
	Size(v T) (size int)
}

type encoder struct {
	bs []byte
	n  int
}

func put[T any](e *encoder, s serializer[T], v T) {
	e.n += s.Marshal(v, e.bs[e.n:])
}

type decoder struct {
	bs  []byte
	n   int
	err error
}

func get[T any](d *decoder, s serializer[T]) T {
	var v T
	if d.err != nil {
		return v
	}
	if d.n > len(d.bs) {
		d.err = ErrTruncatedData
		return v
	}
	v, n, err := s.Unmarshal(d.bs[d.n:])
	d.n += n
	if err != nil {
		d.err = err
	}
	return v
}

func (d *decoder) length() int {
	n := get(d, varint.Int)
	if d.err == nil && (n < 0 || n > len(d.bs)-d.n) {
		d.err = ErrTruncatedData
		return 0
	}
	return n
}

func timeToMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microToTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}

func stringsSize(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

func putStrings(e *encoder, ss []string) {
	put(e, varint.Int, len(ss))
	for _, s := range ss {
		put(e, ord.String, s)
	}
}

func getStrings(d *decoder) []string {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	ss := make([]string, n)
	for i := range ss {
		ss[i] = get(d, ord.String)
	}
	return ss
}

func vectorSize(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, x := range v {
		size += raw.Float32.Size(x)
	}
	return size
}

func putVector(e *encoder, v []float32) {
	put(e, varint.Int, len(v))
	for _, x := range v {
		put(e, raw.Float32, x)
	}
}

func getVector(d *decoder) []float32 {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = get(d, raw.Float32)
	}
	return v
}

// sortedKeys returns map keys in order so encodings are deterministic.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func metadataSize(m map[string]string) int {
	size := varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k) + ord.String.Size(v)
	}
	return size
}

func putMetadata(e *encoder, m map[string]string) {
	put(e, varint.Int, len(m))
	for _, k := range sortedKeys(m) {
		put(e, ord.String, k)
		put(e, ord.String, m[k])
	}
}

func getMetadata(d *decoder) map[string]string {
	n := d.length()
	if d.err != nil || n == 0 {
		return nil
	}
	m := make(map[string]string, n)
	for range n {
		k := get(d, ord.String)
		m[k] = get(d, ord.String)
	}
	return m
}

func newDecoder(data []byte) (*decoder, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}
	if data[0] != formatVersion {
		return nil, fmt.Errorf("%w: unknown format version %d", ErrSerializationFailed, data[0])
	}
	return &decoder{bs: data, n: 1}, nil
}

func (d *decoder) finish() error {
	if d.err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, d.err)
	}
	return nil
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalPublication serializes a Publication to bytes.
func MarshalPublication(pub *core.Publication) []byte {
	size := 1 +
		ord.String.Size(pub.ID) +
		ord.String.Size(pub.Title) +
		ord.String.Size(pub.Authors) +
		varint.Int.Size(pub.Year) +
		ord.String.Size(pub.Mission) +
		ord.String.Size(pub.Organism) +
		ord.String.Size(pub.PDFURL) +
		ord.String.Size(pub.Abstract) +
		varint.Int64.Size(timeToMicro(pub.InsertedAt)) +
		varint.Int64.Size(timeToMicro(pub.UpdatedAt)) +
		metadataSize(pub.Metadata)

	e := &encoder{bs: make([]byte, size)}
	e.bs[0] = formatVersion
	e.n = 1
	put(e, ord.String, pub.ID)
	put(e, ord.String, pub.Title)
	put(e, ord.String, pub.Authors)
	put(e, varint.Int, pub.Year)
	put(e, ord.String, pub.Mission)
	put(e, ord.String, pub.Organism)
	put(e, ord.String, pub.PDFURL)
	put(e, ord.String, pub.Abstract)
	put(e, varint.Int64, timeToMicro(pub.InsertedAt))
	put(e, varint.Int64, timeToMicro(pub.UpdatedAt))
	putMetadata(e, pub.Metadata)
	return e.bs[:e.n]
}

// UnmarshalPublication deserializes a Publication from bytes.
func UnmarshalPublication(data []byte) (*core.Publication, error) {
	d, err := newDecoder(data)
	if err != nil {
		return nil, err
	}
	pub := &core.Publication{
		ID:       get(d, ord.String),
		Title:    get(d, ord.String),
		Authors:  get(d, ord.String),
		Year:     get(d, varint.Int),
		Mission:  get(d, ord.String),
		Organism: get(d, ord.String),
		PDFURL:   get(d, ord.String),
		Abstract: get(d, ord.String),
	}
	pub.InsertedAt = microToTime(get(d, varint.Int64))
	pub.UpdatedAt = microToTime(get(d, varint.Int64))
	pub.Metadata = getMetadata(d)
	if err := d.finish(); err != nil {
		return nil, err
	}
	return pub, nil
}

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	page := -1
	if chunk.PageNumber != nil {
		page = *chunk.PageNumber
	}
	size := 1 +
		varint.Uint64.Size(uint64(chunk.ID)) +
		ord.String.Size(chunk.PublicationID) +
		varint.Int.Size(chunk.ChunkIndex) +
		ord.String.Size(chunk.Content) +
		varint.Int.Size(page) +
		stringsSize(chunk.Tags) +
		vectorSize(chunk.Embedding) +
		varint.Int64.Size(timeToMicro(chunk.InsertedAt))

	e := &encoder{bs: make([]byte, size)}
	e.bs[0] = formatVersion
	e.n = 1
	put(e, varint.Uint64, uint64(chunk.ID))
	put(e, ord.String, chunk.PublicationID)
	put(e, varint.Int, chunk.ChunkIndex)
	put(e, ord.String, chunk.Content)
	put(e, varint.Int, page)
	putStrings(e, chunk.Tags)
	putVector(e, chunk.Embedding)
	put(e, varint.Int64, timeToMicro(chunk.InsertedAt))
	return e.bs[:e.n]
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	d, err := newDecoder(data)
	if err != nil {
		return nil, err
	}
	chunk := &core.Chunk{
		ID:            core.ID(get(d, varint.Uint64)),
		PublicationID: get(d, ord.String),
		ChunkIndex:    get(d, varint.Int),
		Content:       get(d, ord.String),
	}
	// Negative page numbers mark an absent page.
	if page := get(d, varint.Int); page >= 0 {
		chunk.PageNumber = &page
	}
	chunk.Tags = getStrings(d)
	chunk.Embedding = getVector(d)
	chunk.InsertedAt = microToTime(get(d, varint.Int64))
	if err := d.finish(); err != nil {
		return nil, err
	}
	return chunk, nil
}
