// Command huffcodec compresses UTF-8 text with a Huffman code over runes.
//
// A symbol table is first trained from sample text:
//
//	huffcodec -a train -f sample.txt -o table.properties
//
// and then used to compress and decompress:
//
//	huffcodec -a c -t table.properties -f input.txt -o input.huff
//	huffcodec -a d -t table.properties -f input.huff -o input.txt
//
// Runes missing from the table are escaped and stored as raw UTF-8.
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"unicode/utf8"

	"golang.org/x/exp/slices"

	"github.com/chronos-tachyon/huffman/v2"
)

var (
	a        = flag.String("a", "c", "action: train to build a table, c for compression, d for decompression")
	f        = flag.String("f", "", "input file")
	o        = flag.String("o", "", "output file")
	table    = flag.String("t", "", "symbol table, as written by -a train")
	maxBits  = flag.Int("bits", 12, "maximum code length in bits")
	minCount = flag.Uint64("min", 1, "minimum count for a rune to get a code of its own")
	v        = flag.Bool("v", false, "log progress to stderr")
)

// escapeRune is a noncharacter, so it won't collide with real text.  If it
// does show up, it is escaped like any other uncoded rune.
const escapeRune = '\uFFFF'

func main() {
	flag.Parse()
	err := initInputOutput()
	if err != nil {
		closeInput()
		log.Fatalln(err)
		return
	}
	err = run()
	if err == nil {
		err = closeOutput()
	}
	closeInput()
	if err != nil {
		log.Fatalln(err)
		return
	}
}

func run() error {
	switch *a {
	case "train":
		return train()
	case "c":
		return compress()
	case "d":
		return decompress()
	default:
		return fmt.Errorf("unknown action %q", *a)
	}
}

var (
	input     io.Reader
	output    io.Writer
	inputFile *os.File
)

func initInputOutput() (err error) {
	if *f == "" {
		input = os.Stdin
	} else {
		inputFile, err = os.Open(*f)
		if err != nil {
			return err
		}
		input = inputFile
	}
	if *o == "" {
		output = os.Stdout
	} else {
		output, err = os.Create(*o)
		if err != nil {
			return err
		}
	}
	return nil
}

func closeInput() {
	if inputFile != nil {
		inputFile.Close()
		inputFile = nil
	}
}

func closeOutput() error {
	if c, ok := output.(io.Closer); ok && output != os.Stdout {
		return c.Close()
	}
	return nil
}

func train() error {
	data, err := io.ReadAll(input)
	if err != nil {
		return err
	}
	freqs := huffman.Count([]rune(string(data)))
	slices.SortStableFunc(freqs, func(x, y huffman.Frequency[rune]) int {
		switch {
		case x.Count > y.Count:
			return -1
		case x.Count < y.Count:
			return 1
		default:
			return 0
		}
	})
	if *v {
		log.Printf("counted %d distinct runes in %d bytes", len(freqs), len(data))
	}
	return huffman.WriteProperties(output, freqs, runeToString)
}

func compress() error {
	codec, err := loadCodec()
	if err != nil {
		return err
	}
	data, err := io.ReadAll(input)
	if err != nil {
		return err
	}
	runes := []rune(string(data))

	bw := bufio.NewWriter(output)
	var header [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(header[:], uint64(len(runes)))
	if _, err := bw.Write(header[:n]); err != nil {
		return err
	}
	p := &huffman.SliceProducer[rune]{Values: runes, Escape: writeRune}
	if err := codec.Encode(bw, p); err != nil {
		return err
	}
	if *v {
		log.Printf("compressed %d runes (%d bytes)", len(runes), len(data))
	}
	return bw.Flush()
}

func decompress() error {
	codec, err := loadCodec()
	if err != nil {
		return err
	}
	br := bufio.NewReader(input)
	count, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("failed to read rune count: %w", err)
	}

	c := &huffman.SliceConsumer[rune]{Limit: int(count), Escape: readRune}
	if count != 0 {
		if err := codec.Decode(br, c); err != nil {
			return err
		}
	}
	if uint64(len(c.Values)) != count {
		return fmt.Errorf("truncated input: expected %d runes, got %d", count, len(c.Values))
	}
	if *v {
		log.Printf("decompressed %d runes", count)
	}
	_, err = io.WriteString(output, string(c.Values))
	return err
}

func loadCodec() (*huffman.Codec[rune], error) {
	if *table == "" {
		return nil, errors.New("missing -t flag")
	}
	file, err := os.Open(*table)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	freqs, err := huffman.ReadProperties(file, stringToRune)
	if err != nil {
		return nil, err
	}
	escape := huffman.Frequency[rune]{Value: escapeRune, Count: 1}
	symbols, err := huffman.NewSymbolsWithEscape(freqs, escape, *minCount)
	if err != nil {
		return nil, err
	}
	codec, err := huffman.NewCodec(symbols, *maxBits)
	if err != nil {
		return nil, err
	}
	if *v {
		log.Printf("built %v from %d table entries", codec, len(freqs))
	}
	return codec, nil
}

func runeToString(r rune) string {
	return string(r)
}

func stringToRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("expected exactly one rune, got %q", s)
	}
	return r, nil
}

func writeRune(w io.Writer, r rune) error {
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], r)
	_, err := w.Write(buf[:n])
	return err
}

func readRune(r io.ByteReader) (rune, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	var size int
	switch {
	case b0 < 0x80:
		return rune(b0), nil
	case b0&0xe0 == 0xc0:
		size = 2
	case b0&0xf0 == 0xe0:
		size = 3
	case b0&0xf8 == 0xf0:
		size = 4
	default:
		return 0, fmt.Errorf("invalid UTF-8 lead byte 0x%02x", b0)
	}
	buf := [utf8.UTFMax]byte{b0}
	for i := 1; i < size; i++ {
		if buf[i], err = r.ReadByte(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
	}
	ch, n := utf8.DecodeRune(buf[:size])
	if n != size {
		return 0, fmt.Errorf("invalid UTF-8 sequence % x", buf[:size])
	}
	return ch, nil
}
