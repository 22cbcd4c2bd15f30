package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danderson/osc"
)

// parseArgs parses command line words into OSC arguments.
//
// Typed values are written as tag:value, for example i:42 or
// s:hello. The tags T, F, N and I stand alone, and [ and ] delimit
// arrays.
func parseArgs(words []string) ([]osc.Arg, error) {
	args, _, err := parseArgList(words, false)
	return args, err
}

func parseArgList(words []string, inArray bool) (args []osc.Arg, rest []string, err error) {
	args = []osc.Arg{}
	for len(words) > 0 {
		w := words[0]
		words = words[1:]
		switch w {
		case "[":
			var arr []osc.Arg
			arr, words, err = parseArgList(words, true)
			if err != nil {
				return nil, nil, err
			}
			if len(words) == 0 {
				return nil, nil, errors.New("unterminated array, missing ]")
			}
			words = words[1:]
			args = append(args, osc.Array(arr))
		case "]":
			if !inArray {
				return nil, nil, errors.New("unexpected ]")
			}
			return args, append([]string{w}, words...), nil
		default:
			arg, err := parseArg(w)
			if err != nil {
				return nil, nil, fmt.Errorf("parsing %q: %w", w, err)
			}
			args = append(args, arg)
		}
	}
	return args, nil, nil
}

func parseArg(w string) (osc.Arg, error) {
	switch w {
	case "T":
		return osc.Bool(true), nil
	case "F":
		return osc.Bool(false), nil
	case "N":
		return osc.Nil{}, nil
	case "I":
		return osc.Infinity{}, nil
	}

	tag, val, ok := strings.Cut(w, ":")
	if !ok || len(tag) != 1 {
		return nil, errors.New("expected tag:value")
	}
	switch tag[0] {
	case 'i':
		v, err := strconv.ParseInt(val, 0, 32)
		return osc.Int32(v), err
	case 'h':
		v, err := strconv.ParseInt(val, 0, 64)
		return osc.Int64(v), err
	case 'f':
		v, err := strconv.ParseFloat(val, 32)
		return osc.Float32(v), err
	case 'd':
		v, err := strconv.ParseFloat(val, 64)
		return osc.Float64(v), err
	case 'c':
		r, n := utf8.DecodeRuneInString(val)
		if r == utf8.RuneError || n != len(val) {
			return nil, errors.New("char must be a single character")
		}
		return osc.Char(r), nil
	case 's':
		return osc.String(val), nil
	case 'b':
		bs, err := hex.DecodeString(val)
		return osc.Blob(bs), err
	case 't':
		return parseTimeTag(val)
	case 'm':
		bs, err := parseBytes(val)
		if err != nil {
			return nil, err
		}
		return osc.MIDI{Port: bs[0], Status: bs[1], Data1: bs[2], Data2: bs[3]}, nil
	case 'r':
		bs, err := hex.DecodeString(val)
		if err != nil {
			return nil, err
		}
		if len(bs) != 4 {
			return nil, errors.New("color must be 4 hex bytes RRGGBBAA")
		}
		return osc.Color{R: bs[0], G: bs[1], B: bs[2], A: bs[3]}, nil
	default:
		return nil, fmt.Errorf("unknown type tag %q", tag)
	}
}

// parseTimeTag parses "now", "immediately", or SECONDS.FRACTION in
// raw TimeTag units.
func parseTimeTag(val string) (osc.TimeTag, error) {
	switch val {
	case "now":
		return osc.FromTime(time.Now()), nil
	case "immediately":
		return osc.Immediately, nil
	}
	secs, frac, _ := strings.Cut(val, ".")
	s, err := strconv.ParseUint(secs, 0, 32)
	if err != nil {
		return osc.TimeTag{}, err
	}
	var f uint64
	if frac != "" {
		f, err = strconv.ParseUint(frac, 0, 32)
		if err != nil {
			return osc.TimeTag{}, err
		}
	}
	return osc.TimeTag{Seconds: uint32(s), Fraction: uint32(f)}, nil
}

// parseBytes parses 4 comma-separated byte values.
func parseBytes(val string) ([4]byte, error) {
	var ret [4]byte
	fs := strings.Split(val, ",")
	if len(fs) != 4 {
		return ret, errors.New("expected 4 comma-separated bytes")
	}
	for i, f := range fs {
		v, err := strconv.ParseUint(f, 0, 8)
		if err != nil {
			return ret, err
		}
		ret[i] = byte(v)
	}
	return ret, nil
}
