package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRuneEscape(t *testing.T) {
	runes := []rune{'a', 'é', '日', '😀', escapeRune}
	var buf bytes.Buffer
	for _, r := range runes {
		if err := writeRune(&buf, r); err != nil {
			t.Fatalf("writeRune failed: %v", err)
		}
	}
	br := bytes.NewReader(buf.Bytes())
	for _, expect := range runes {
		actual, err := readRune(br)
		if err != nil {
			t.Fatalf("readRune failed: %v", err)
		}
		if actual != expect {
			t.Errorf("expected %q, got %q", expect, actual)
		}
	}
	if _, err := readRune(br); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReadRune_Errors(t *testing.T) {
	type testRow struct {
		name  string
		input []byte
	}

	testData := [...]testRow{
		{name: "continuation", input: []byte{0x80}},
		{name: "truncated", input: []byte{0xe6, 0x97}},
		{name: "overlong", input: []byte{0xc0, 0x80}},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			if r, err := readRune(bytes.NewReader(row.input)); err == nil {
				t.Errorf("expected error, got %q", r)
			}
		})
	}
}

func TestStringToRune(t *testing.T) {
	if r, err := stringToRune("é"); err != nil || r != 'é' {
		t.Errorf("expected 'é', got %q, %v", r, err)
	}
	for _, s := range []string{"", "ab"} {
		if _, err := stringToRune(s); err == nil {
			t.Errorf("stringToRune(%q): expected error", s)
		}
	}
	if s := runeToString('\n'); s != "\n" {
		t.Errorf("expected newline, got %q", s)
	}
}

func runAction(action string, in []byte) ([]byte, error) {
	*a = action
	input = bytes.NewReader(in)
	var buf bytes.Buffer
	output = &buf
	err := run()
	return buf.Bytes(), err
}

// trainTable trains on sample and points the -t flag at the result.
func trainTable(t *testing.T, sample string) []byte {
	t.Helper()
	tbl, err := runAction("train", []byte(sample))
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	*table = filepath.Join(t.TempDir(), "table.properties")
	if err := os.WriteFile(*table, tbl, 0o644); err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestRoundTrip(t *testing.T) {
	type testRow struct {
		name   string
		sample string
		text   string
	}

	testData := [...]testRow{
		{name: "plain", sample: "the quick brown fox", text: "the quick brown fox"},
		{name: "special-keys", sample: "a=b:c #!\\ \t\r\n\f  é", text: "  #a\\b=c:!\r\n\té\f"},
		{name: "unseen", sample: "aaaabbbc", text: "abc日本語😀 d"},
		{name: "escape-rune", sample: "abab", text: "ab\uFFFFba"},
		{name: "escape-rune-trained", sample: "ab\uFFFFab", text: "\uFFFFab\uFFFF"},
		{name: "empty", sample: "abab", text: ""},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			trainTable(t, row.sample)

			data, err := runAction("c", []byte(row.text))
			if err != nil {
				t.Fatalf("compress failed: %v", err)
			}
			count, n := binary.Uvarint(data)
			if n <= 0 || count != uint64(len([]rune(row.text))) {
				t.Errorf("wrong rune count header: %d (%d bytes)", count, n)
			}

			out, err := runAction("d", data)
			if err != nil {
				t.Fatalf("decompress failed: %v", err)
			}
			if string(out) != row.text {
				t.Errorf("wrong output:\n\texpect: %q\n\tactual: %q", row.text, out)
			}
		})
	}
}

func TestTrain(t *testing.T) {
	tbl := trainTable(t, "a=a\n")
	expect := strings.Join([]string{
		"# Huffman symbol frequencies\n",
		"a=2\n",
		"\\==1\n",
		"\\n=1\n",
	}, "")
	if string(tbl) != expect {
		t.Errorf("wrong output:\n\texpect: %q\n\tactual: %q", expect, tbl)
	}
}

func TestDecompress_Truncated(t *testing.T) {
	trainTable(t, "hello world")
	data, err := runAction("c", []byte("hello world"))
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	for _, n := range []int{1, len(data) - 1} {
		_, err := runAction("d", data[:n])
		if err == nil || !strings.Contains(err.Error(), "truncated input") {
			t.Errorf("%d of %d bytes: expected truncated input, got %v", n, len(data), err)
		}
	}
	if _, err := runAction("d", nil); err == nil {
		t.Errorf("empty input: expected error")
	}
}

func TestRun_UnknownAction(t *testing.T) {
	if _, err := runAction("x", nil); err == nil {
		t.Errorf("expected error")
	}
}

func TestCloseInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	*f = path
	*o = filepath.Join(dir, "missing", "output.huff")
	defer func() {
		*f, *o = "", ""
	}()

	if err := initInputOutput(); err == nil {
		t.Fatalf("expected error creating %s", *o)
	}
	file := inputFile
	if file == nil {
		t.Fatalf("input file was not opened")
	}
	closeInput()
	if inputFile != nil {
		t.Errorf("input file still set after closeInput")
	}
	if _, err := file.Read(make([]byte, 1)); err == nil {
		t.Errorf("input file is still open")
	}
}
