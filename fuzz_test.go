//go:build go1.18
// +build go1.18

package huffman

import (
	"bytes"
	"io"
	"testing"
)

func FuzzRoundTrip(f *testing.F) {
	sample := []byte("the quick brown fox jumped over the lazy dog")
	s, err := NewSymbolsWithEscape(Count(sample), Frequency[byte]{Value: 0, Count: 1}, 2)
	if err != nil {
		f.Fatalf("NewSymbolsWithEscape failed: %v", err)
	}
	codec, err := NewCodec(s, 6)
	if err != nil {
		f.Fatalf("NewCodec failed: %v", err)
	}

	writeByte := func(w io.Writer, value byte) error {
		_, err := w.Write([]byte{value})
		return err
	}

	f.Add(sample)
	f.Add([]byte{0, 0, 0xff, 'e'})
	f.Fuzz(func(t *testing.T, source []byte) {
		data := encode(t, codec, source, writeByte)
		if len(source) == 0 {
			if len(data) != 0 {
				t.Fatalf("expected no output, got % x", data)
			}
			return
		}

		consumer := &SliceConsumer[byte]{Limit: len(source), Escape: io.ByteReader.ReadByte}
		if err := codec.Decode(bytes.NewReader(data), consumer); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(consumer.Values, source) {
			t.Fatalf("wrong output:\n\texpect: % x\n\tactual: % x", source, consumer.Values)
		}
	})
}
