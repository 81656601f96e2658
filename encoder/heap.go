package encoder

import (
	"encoding/binary"
	"fmt"
)

// HeapDescriptor records where one blob lives in the heap body: a byte
// offset and a length, both stored little-endian in the image header —
// the opposite endianness from instruction operands, which is deliberate
// and must not be "fixed" into agreement.
type HeapDescriptor struct {
	Offset uint32
	Length uint32
}

// MemoryHeap is an append-only blob container. Descriptor indices are
// stable across Edit calls: editing a blob never changes another
// descriptor's index, even though a resizing edit rebuilds the backing
// array and shifts the offsets of every later blob.
type MemoryHeap struct {
	descriptors []HeapDescriptor
	body        []byte
}

// NewMemoryHeap returns an empty heap.
func NewMemoryHeap() *MemoryHeap {
	return &MemoryHeap{}
}

// Alloc reserves size zero-filled bytes as a new blob and returns its
// descriptor index.
func (h *MemoryHeap) Alloc(size uint32) uint32 {
	desc := HeapDescriptor{Offset: uint32(len(h.body)), Length: size}
	h.body = append(h.body, make([]byte, size)...)
	h.descriptors = append(h.descriptors, desc)
	return uint32(len(h.descriptors) - 1)
}

// Add appends data verbatim as one new blob and returns its descriptor
// index. Unlike Alloc, it does not pad: a `.str 'Hello'` directive
// produces a heap descriptor of length exactly 5, not some fixed-size
// slot.
func (h *MemoryHeap) Add(data []byte) uint32 {
	desc := HeapDescriptor{Offset: uint32(len(h.body)), Length: uint32(len(data))}
	h.body = append(h.body, data...)
	h.descriptors = append(h.descriptors, desc)
	return uint32(len(h.descriptors) - 1)
}

// Edit replaces the blob at index with data, which may be a different
// length than the blob's current contents. A length change rebuilds the
// backing array and shifts the offsets of every descriptor after index;
// index itself, and every descriptor before it, is untouched.
func (h *MemoryHeap) Edit(data []byte, index uint32) error {
	if int(index) >= len(h.descriptors) {
		return fmt.Errorf("heap: edit of out-of-range descriptor %d", index)
	}
	old := h.descriptors[index]

	if len(data) == int(old.Length) {
		copy(h.body[old.Offset:old.Offset+old.Length], data)
		return nil
	}

	newBody := make([]byte, 0, len(h.body)-int(old.Length)+len(data))
	newBody = append(newBody, h.body[:old.Offset]...)
	newBody = append(newBody, data...)
	newBody = append(newBody, h.body[old.Offset+old.Length:]...)
	h.body = newBody

	delta := int64(len(data)) - int64(old.Length)
	h.descriptors[index].Length = uint32(len(data))
	for i := int(index) + 1; i < len(h.descriptors); i++ {
		h.descriptors[i].Offset = uint32(int64(h.descriptors[i].Offset) + delta)
	}
	return nil
}

// GetSlice returns the bytes backing the blob at index.
func (h *MemoryHeap) GetSlice(index uint32) ([]byte, error) {
	if int(index) >= len(h.descriptors) {
		return nil, fmt.Errorf("heap: read of out-of-range descriptor %d", index)
	}
	desc := h.descriptors[index]
	return h.body[desc.Offset : desc.Offset+desc.Length], nil
}

// Len returns the number of blob descriptors in the heap.
func (h *MemoryHeap) Len() int {
	return len(h.descriptors)
}

// BodyLen returns the size in bytes of the heap body — the VM loader's
// code_offset.
func (h *MemoryHeap) BodyLen() int {
	return len(h.body)
}

// Header serializes the descriptor table as little-endian (offset,
// length) uint32 pairs, the format stored in the image header.
func (h *MemoryHeap) Header() []byte {
	buf := make([]byte, 8*len(h.descriptors))
	for i, d := range h.descriptors {
		binary.LittleEndian.PutUint32(buf[i*8:], d.Offset)
		binary.LittleEndian.PutUint32(buf[i*8+4:], d.Length)
	}
	return buf
}

// ToBytes returns the heap body bytes, in descriptor order (which is also
// byte order, since the heap is append-only).
func (h *MemoryHeap) ToBytes() []byte {
	return append([]byte(nil), h.body...)
}

// ParseHeapHeader decodes the descriptor table out of a raw header region
// (the bytes between the magic and the start of the heap body, including
// trailing zero padding). The image format carries no explicit descriptor
// count, so descriptors are read until the first all-zero (offset, length)
// pair — the same bytes padding would produce. A genuine leading blob of
// length zero is therefore indistinguishable from "no blobs" and is read
// as the latter; real programs never declare an empty `.str`.
func ParseHeapHeader(header []byte) []HeapDescriptor {
	var descs []HeapDescriptor
	for i := 0; i+8 <= len(header); i += 8 {
		off := binary.LittleEndian.Uint32(header[i:])
		length := binary.LittleEndian.Uint32(header[i+4:])
		if off == 0 && length == 0 {
			break
		}
		descs = append(descs, HeapDescriptor{Offset: off, Length: length})
	}
	return descs
}

// HeapFromBytes reconstructs a MemoryHeap from a raw header region and the
// heap body bytes, as read back by the loader.
func HeapFromBytes(header, body []byte) (*MemoryHeap, error) {
	descs := ParseHeapHeader(header)
	h := &MemoryHeap{body: append([]byte(nil), body...)}
	for i, d := range descs {
		if uint64(d.Offset)+uint64(d.Length) > uint64(len(body)) {
			return nil, fmt.Errorf("heap: descriptor %d (offset %d, length %d) exceeds body length %d", i, d.Offset, d.Length, len(body))
		}
	}
	h.descriptors = descs
	return h, nil
}
