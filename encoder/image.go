package encoder

import "fmt"

// Magic is the 5-byte image signature every assembled program begins with.
var Magic = [5]byte{'r', 'o', 'c', 'k', 'y'}

// HeaderLen is the fixed size, in bytes, of the image header: the magic
// bytes, the heap descriptor table, and zero padding out to this length.
// Code always begins at exactly this offset plus the heap body size,
// regardless of how many heap descriptors the program declares.
const HeaderLen = 64

// BuildImage lays out the header, heap body, and code section into one
// contiguous byte slice: magic, heap descriptor table, zero padding to
// HeaderLen, heap body, code.
func BuildImage(heap *MemoryHeap, code []byte) ([]byte, error) {
	heapHeader := heap.Header()
	if len(heapHeader)+len(Magic) > HeaderLen {
		return nil, fmt.Errorf("image: heap descriptor table (%d bytes) does not fit in %d-byte header", len(heapHeader), HeaderLen)
	}

	out := make([]byte, 0, HeaderLen+heap.BodyLen()+len(code))
	out = append(out, Magic[:]...)
	out = append(out, heapHeader...)
	out = append(out, make([]byte, HeaderLen-len(Magic)-len(heapHeader))...)
	out = append(out, heap.ToBytes()...)
	out = append(out, code...)
	return out, nil
}

// SplitImage verifies the magic bytes and breaks a raw image back into its
// heap header region, heap body, and code section.
func SplitImage(raw []byte) (heapHeader, heapBody, code []byte, err error) {
	if len(raw) < HeaderLen {
		err = fmt.Errorf("image: truncated, %d bytes is shorter than header length %d", len(raw), HeaderLen)
		return
	}

	var magic [5]byte
	copy(magic[:], raw[:5])
	if magic != Magic {
		err = fmt.Errorf("image: bad magic %q, expected %q", magic, Magic)
		return
	}

	heapHeader = raw[5:HeaderLen]
	descs := ParseHeapHeader(heapHeader)

	bodyLen := 0
	for _, d := range descs {
		if end := int(d.Offset + d.Length); end > bodyLen {
			bodyLen = end
		}
	}

	rest := raw[HeaderLen:]
	if bodyLen > len(rest) {
		err = fmt.Errorf("image: heap body truncated, need %d bytes, have %d", bodyLen, len(rest))
		return
	}
	heapBody = rest[:bodyLen]
	code = rest[bodyLen:]
	return
}
