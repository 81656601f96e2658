package encoder

import "testing"

func TestBuildImageAndSplitImageRoundTrip(t *testing.T) {
	heap := NewMemoryHeap()
	heap.Add([]byte("Hello"))
	code := EncodeInstruction(HLT)

	image, err := BuildImage(heap, code)
	if err != nil {
		t.Fatalf("BuildImage failed: %v", err)
	}

	if len(image) < HeaderLen {
		t.Fatalf("expected image at least %d bytes, got %d", HeaderLen, len(image))
	}
	var magic [5]byte
	copy(magic[:], image[:5])
	if magic != Magic {
		t.Fatalf("expected magic %q, got %q", Magic, magic)
	}

	heapHeader, heapBody, splitCode, err := SplitImage(image)
	if err != nil {
		t.Fatalf("SplitImage failed: %v", err)
	}
	if string(heapBody) != "Hello" {
		t.Errorf("expected heap body %q, got %q", "Hello", heapBody)
	}
	if string(splitCode) != string(code) {
		t.Errorf("expected code %v, got %v", code, splitCode)
	}

	descs := ParseHeapHeader(heapHeader)
	if len(descs) != 1 || descs[0].Length != 5 {
		t.Errorf("unexpected descriptors parsed from split header: %+v", descs)
	}
}

func TestSplitImageRejectsBadMagic(t *testing.T) {
	raw := make([]byte, HeaderLen)
	copy(raw, "wrong")
	_, _, _, err := SplitImage(raw)
	if err == nil {
		t.Fatal("expected an error for a bad magic signature")
	}
}

func TestSplitImageRejectsTruncatedImage(t *testing.T) {
	_, _, _, err := SplitImage(make([]byte, HeaderLen-1))
	if err == nil {
		t.Fatal("expected an error for an image shorter than the header")
	}
}

func TestBuildImageRejectsOversizedHeapHeader(t *testing.T) {
	heap := NewMemoryHeap()
	for i := 0; i < HeaderLen; i++ {
		heap.Add([]byte{byte(i)})
	}
	_, err := BuildImage(heap, nil)
	if err == nil {
		t.Fatal("expected an error when the heap descriptor table does not fit in the fixed header")
	}
}
