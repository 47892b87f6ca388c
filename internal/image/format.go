// Package image implements the on-disk wire format for a compiled
// program: the four read-only pools the core vm.Image carries in
// memory (vm/pools.go), serialized so a compiler or assembler can hand
// the VM a finished binary rather than building pools by hand.
//
// The layout is modeled on the section-count-then-entries shape common
// to small bytecode formats: a fixed header followed by four
// length-prefixed sections, all multi-byte fields big-endian to match
// the VM's own immediate encoding.
package image

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-c0vm/c0vm"
)

// Magic identifies a c0vm program image file.
const Magic uint32 = 0xC0C0FACE

// FormatVersion allows the format to evolve without breaking readers
// that check it.
const FormatVersion uint16 = 1

// Encode writes img to w in the wire format.
func Encode(w io.Writer, img *vm.Image) error {
	if err := writeHeader(w); err != nil {
		return fmt.Errorf("image: write header: %w", err)
	}
	if err := writeInts(w, img.IntPool); err != nil {
		return fmt.Errorf("image: write int pool: %w", err)
	}
	if err := writeStrings(w, img.StringPool); err != nil {
		return fmt.Errorf("image: write string pool: %w", err)
	}
	if err := writeFuncs(w, img.FunctionPool); err != nil {
		return fmt.Errorf("image: write function pool: %w", err)
	}
	if err := writeNatives(w, img.NativePool); err != nil {
		return fmt.Errorf("image: write native pool: %w", err)
	}
	return nil
}

// Decode reads a program image from r.
func Decode(r io.Reader) (*vm.Image, error) {
	if err := readHeader(r); err != nil {
		return nil, fmt.Errorf("image: read header: %w", err)
	}
	ints, err := readInts(r)
	if err != nil {
		return nil, fmt.Errorf("image: read int pool: %w", err)
	}
	strs, err := readStrings(r)
	if err != nil {
		return nil, fmt.Errorf("image: read string pool: %w", err)
	}
	funcs, err := readFuncs(r)
	if err != nil {
		return nil, fmt.Errorf("image: read function pool: %w", err)
	}
	natives, err := readNatives(r)
	if err != nil {
		return nil, fmt.Errorf("image: read native pool: %w", err)
	}
	return &vm.Image{
		IntPool:      ints,
		StringPool:   strs,
		FunctionPool: funcs,
		NativePool:   natives,
	}, nil
}

func writeHeader(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, Magic); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, FormatVersion)
}

func readHeader(r io.Reader) error {
	var magic uint32
	if err := binary.Read(r, binary.BigEndian, &magic); err != nil {
		return err
	}
	if magic != Magic {
		return fmt.Errorf("bad magic 0x%08x (want 0x%08x)", magic, Magic)
	}
	var version uint16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return err
	}
	if version != FormatVersion {
		return fmt.Errorf("unsupported format version %d (want %d)", version, FormatVersion)
	}
	return nil
}

func writeInts(w io.Writer, ints []int32) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(ints))); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, ints)
}

func readInts(r io.Reader) ([]int32, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	ints := make([]int32, n)
	if n > 0 {
		if err := binary.Read(r, binary.BigEndian, ints); err != nil {
			return nil, err
		}
	}
	return ints, nil
}

func writeStrings(w io.Writer, pool []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(pool))); err != nil {
		return err
	}
	_, err := w.Write(pool)
	return err
}

func readStrings(r io.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeFuncs(w io.Writer, funcs []vm.FuncDesc) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(funcs))); err != nil {
		return err
	}
	for i, fd := range funcs {
		if err := binary.Write(w, binary.BigEndian, fd.NumArgs); err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
		if err := binary.Write(w, binary.BigEndian, fd.NumVars); err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(fd.Code))); err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
		if _, err := w.Write(fd.Code); err != nil {
			return fmt.Errorf("function %d: %w", i, err)
		}
	}
	return nil
}

func readFuncs(r io.Reader) ([]vm.FuncDesc, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	funcs := make([]vm.FuncDesc, n)
	for i := range funcs {
		var numArgs, numVars uint16
		var codeLen uint32
		if err := binary.Read(r, binary.BigEndian, &numArgs); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &numVars); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &codeLen); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		code := make([]byte, codeLen)
		if _, err := io.ReadFull(r, code); err != nil {
			return nil, fmt.Errorf("function %d: %w", i, err)
		}
		funcs[i] = vm.FuncDesc{NumArgs: numArgs, NumVars: numVars, Code: code}
	}
	return funcs, nil
}

func writeNatives(w io.Writer, natives []vm.NativeDesc) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(natives))); err != nil {
		return err
	}
	for i, nd := range natives {
		if err := binary.Write(w, binary.BigEndian, nd.NumArgs); err != nil {
			return fmt.Errorf("native %d: %w", i, err)
		}
		if err := binary.Write(w, binary.BigEndian, nd.TableIndex); err != nil {
			return fmt.Errorf("native %d: %w", i, err)
		}
	}
	return nil
}

func readNatives(r io.Reader) ([]vm.NativeDesc, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, err
	}
	natives := make([]vm.NativeDesc, n)
	for i := range natives {
		if err := binary.Read(r, binary.BigEndian, &natives[i].NumArgs); err != nil {
			return nil, fmt.Errorf("native %d: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &natives[i].TableIndex); err != nil {
			return nil, fmt.Errorf("native %d: %w", i, err)
		}
	}
	return natives, nil
}
