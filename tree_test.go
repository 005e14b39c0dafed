package huffman

import (
	"bytes"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/icza/bitio"
	icza "github.com/icza/huffman"
)

func makeTestTree(t *testing.T) *Tree[string] {
	t.Helper()
	s, err := NewSymbols(abcd(), 0)
	if err != nil {
		t.Fatalf("NewSymbols failed: %v", err)
	}
	tree, err := s.Tree(8)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	if err := tree.Encode(); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return tree
}

func TestTree_Dump(t *testing.T) {
	tree := makeTestTree(t)

	expectDump := strings.Join([]string{
		"Tree{\n",
		"\tHeight() = 3\n",
		"\tFrequency() = 10\n",
		"\tLeaf(\"0\") = {a, 5}\n",
		"\tLeaf(\"100\") = {c, 1}\n",
		"\tLeaf(\"101\") = {d, 1}\n",
		"\tLeaf(\"11\") = {b, 3}\n",
		"}\n",
	}, "")

	var buf strings.Builder
	_, _ = tree.Dump(&buf)
	actualDump := buf.String()

	if expectDump != actualDump {
		t.Errorf("wrong output:\n\texpect: %s\n\tactual: %s", expectDump, actualDump)
	}
}

func TestTree_Shape(t *testing.T) {
	tree := makeTestTree(t)

	if tree.IsLeaf() || tree.Symbol() != nil {
		t.Fatalf("root is a leaf")
	}
	if left := tree.Left(); !left.IsLeaf() || left.Symbol().Value != "a" || left.Height() != 0 {
		t.Errorf("wrong left child of root: %v", left.Symbol())
	}
	if f := tree.Right().Frequency(); f != 5 {
		t.Errorf("expected right subtree frequency 5, got %d", f)
	}
}

func TestTree_Decode(t *testing.T) {
	tree := makeTestTree(t)

	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, str := range []string{"11", "0", "101", "100", "0", "101", "0", "10"} {
		hc, _ := ParseCode(str)
		_ = hc.Write(bw)
	}
	_ = bw.Close()

	br := bitio.NewReader(bytes.NewReader(buf.Bytes()))
	var actual []string
	for i := 0; i < 7; i++ {
		cs, err := tree.Decode(br)
		if err != nil {
			t.Fatalf("Decode #%d failed: %v", i, err)
		}
		actual = append(actual, cs.Value)
	}
	if expect := "b a d c a d a"; strings.Join(actual, " ") != expect {
		t.Errorf("wrong symbols:\n\texpect: %s\n\tactual: %s", expect, strings.Join(actual, " "))
	}

	// The stream ends in the middle of "10x".
	if cs, err := tree.Decode(br); err != io.EOF {
		t.Errorf("expected io.EOF, got %v, %v", cs, err)
	}
}

func TestTree_Optimal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		n := 2 + rng.Intn(60)
		freqs := make([]Frequency[int], n)
		leaves := make([]*icza.Node, n)
		for i := range freqs {
			count := 1 + rng.Intn(1000)
			freqs[i] = Frequency[int]{Value: i, Count: uint64(count)}
			leaves[i] = &icza.Node{Value: icza.ValueType(i), Count: count}
		}
		nodes := append([]*icza.Node(nil), leaves...)
		icza.Build(nodes)

		var expect uint64
		for _, leaf := range leaves {
			_, bits := leaf.Code()
			expect += uint64(leaf.Count) * uint64(bits)
		}

		s, err := NewSymbols(freqs, 0)
		if err != nil {
			t.Fatalf("NewSymbols failed: %v", err)
		}
		tree, err := s.Tree(MaxBitsPerCode)
		if err != nil {
			t.Fatalf("Tree failed: %v", err)
		}
		if err := tree.Encode(); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		var actual uint64
		for _, cs := range tree.CodedSymbols() {
			hc, _ := cs.Code()
			actual += cs.Frequency * uint64(hc.Size)
		}
		if expect != actual {
			t.Errorf("iteration %d: expected weighted length %d, got %d", iter, expect, actual)
		}
		if len(tree.CodedSymbols()) != n {
			t.Errorf("iteration %d: expected %d symbols, got %d", iter, n, len(tree.CodedSymbols()))
		}
	}
}
