package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

type symbols []symbol

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.3x)", s.label, s.addr) }

func (s *symbols) forAddr(addr uint16) (ss []symbol) {
	if s == nil {
		return nil
	}
	syms := *s
	i := sort.Search(len(syms), func(i int) bool { return syms[i].addr >= addr })
	for ; i < len(syms) && syms[i].addr == addr; i++ {
		ss = append(ss, syms[i])
	}
	return ss
}

func (s *symbols) withLabelPrefix(prefix string) (ss []symbol) {
	if s == nil {
		return nil
	}
	for _, sym := range *s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve looks up arg as a label, falling back to a hex address
// written as 2a8, $2a8 or 0x2a8.
func (s *symbols) resolve(arg string) (symbol, bool) {
	if s != nil {
		for _, sym := range *s {
			if sym.label == arg {
				return sym, true
			}
		}
	}
	hex := strings.TrimPrefix(strings.TrimPrefix(arg, "$"), "0x")
	addr, err := strconv.ParseUint(hex, 16, 12)
	if err != nil {
		return symbol{}, false
	}
	return symbol{addr: uint16(addr), label: arg}, true
}

// parseSymbols reads a symbol file of "ADDR LABEL" lines with
// hexadecimal addresses. Blank lines and lines starting with # are
// ignored.
func parseSymbols(symFile string) (*symbols, error) {
	f, err := os.Open(symFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		ss   symbols
		line int
		sc   = bufio.NewScanner(f)
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: want ADDR LABEL, got %q", symFile, line, text)
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[0], "0x"), 16, 12)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid address %q", symFile, line, fields[0])
		}
		ss = append(ss, symbol{addr: uint16(addr), label: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return &ss, nil
}

// loadSymbols is parseSymbols for an optional file: a missing file
// yields no symbols and no error.
func loadSymbols(symFile string) (*symbols, error) {
	s, err := parseSymbols(symFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return s, err
}
