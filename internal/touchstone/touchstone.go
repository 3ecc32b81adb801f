// Package touchstone reads two-port Touchstone (.s2p) files and reports the
// scattering parameters as dB magnitudes.
package touchstone

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
)

// Params names the four S-parameters in table order.
var Params = [4]string{"S11", "S21", "S12", "S22"}

// ErrSyntax is wrapped by every parse failure.
var ErrSyntax = errors.New("malformed touchstone data")

// Format is the number pair encoding of a data line.
type Format string

const (
	MagAngle Format = "MA"
	DBAngle  Format = "DB"
	RealImag Format = "RI"
)

// DefaultZ0 is the reference impedance when the option line names none.
const DefaultZ0 = 50.0

var freqScale = map[string]float64{
	"HZ":  1,
	"KHZ": 1e3,
	"MHZ": 1e6,
	"GHZ": 1e9,
}

// Network is a parsed two-port file. S holds S11, S21, S12, S22 per
// frequency, in the order of Params.
type Network struct {
	Freq   []float64 // Hz
	S      [][4]complex128
	Format Format
	Z0     float64
}

// Row is one frequency point in display units.
type Row struct {
	GHz float64
	DB  [4]float64
}

// ParseError reports where a file stopped making sense.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		where = e.Path + ":" + strconv.Itoa(e.Line)
	}
	return fmt.Sprintf("touchstone %s: %v", where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a two-port file from disk.
func Load(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := Parse(f)
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
	}
	return n, err
}

// Parse reads two-port Touchstone data. The option line defaults to
// "# GHz S MA R 50". Data may wrap across lines; version 2 keyword lines
// other than [Two-Port Data Order] are skipped.
func Parse(r io.Reader) (*Network, error) {
	n := &Network{Format: MagAngle, Z0: DefaultZ0}
	scale := freqScale["GHZ"]
	order21 := true
	sawOptions := false

	var values []float64
	var valueLines []int
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if i := strings.IndexByte(line, '!'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "#"):
			if sawOptions {
				continue
			}
			sawOptions = true
			var err error
			if scale, err = n.parseOptions(line[1:]); err != nil {
				return nil, &ParseError{Line: lineNo, Err: err}
			}
			continue
		case strings.HasPrefix(line, "["):
			if k, v, ok := keyword(line); ok && k == "two-port data order" {
				order21 = v != "12_21"
			}
			continue
		}
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: %q is not a number", ErrSyntax, tok)}
			}
			values = append(values, v)
			valueLines = append(valueLines, lineNo)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	const perPoint = 9
	if len(values) == 0 {
		return nil, &ParseError{Line: lineNo, Err: fmt.Errorf("%w: no data", ErrSyntax)}
	}
	if len(values)%perPoint != 0 {
		return nil, &ParseError{Line: valueLines[len(valueLines)-1], Err: fmt.Errorf("%w: %d values do not form two-port points", ErrSyntax, len(values))}
	}
	for i := 0; i < len(values); i += perPoint {
		p := values[i : i+perPoint]
		var s [4]complex128
		for k := 0; k < 4; k++ {
			s[k] = n.Format.complex(p[1+2*k], p[2+2*k])
		}
		if !order21 {
			s[1], s[2] = s[2], s[1]
		}
		n.Freq = append(n.Freq, p[0]*scale)
		n.S = append(n.S, s)
	}
	return n, nil
}

// parseOptions applies an option line and returns the frequency multiplier.
func (n *Network) parseOptions(opts string) (float64, error) {
	scale := freqScale["GHZ"]
	toks := strings.Fields(strings.ToUpper(opts))
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if s, ok := freqScale[tok]; ok {
			scale = s
			continue
		}
		switch tok {
		case "S":
		case "Y", "Z", "H", "G":
			return 0, fmt.Errorf("%w: %s-parameters are not supported", ErrSyntax, tok)
		case string(MagAngle), string(DBAngle), string(RealImag):
			n.Format = Format(tok)
		case "R":
			if i+1 >= len(toks) {
				return 0, fmt.Errorf("%w: reference impedance missing", ErrSyntax)
			}
			z, err := strconv.ParseFloat(toks[i+1], 64)
			if err != nil || z <= 0 {
				return 0, fmt.Errorf("%w: reference impedance %q", ErrSyntax, toks[i+1])
			}
			n.Z0 = z
			i++
		default:
			return 0, fmt.Errorf("%w: unknown option %q", ErrSyntax, tok)
		}
	}
	return scale, nil
}

func keyword(line string) (string, string, bool) {
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(line[1:end])), strings.TrimSpace(line[end+1:]), true
}

func (f Format) complex(a, b float64) complex128 {
	switch f {
	case RealImag:
		return complex(a, b)
	case DBAngle:
		a = math.Pow(10, a/20)
	}
	return cmplx.Rect(a, b*math.Pi/180)
}

// DB returns 20*log10|s|. A zero magnitude yields -Inf.
func DB(s complex128) float64 {
	return 20 * math.Log10(cmplx.Abs(s))
}

// Rows converts the network to frequency in GHz and dB magnitudes.
func (n *Network) Rows() []Row {
	rows := make([]Row, len(n.Freq))
	for i, f := range n.Freq {
		rows[i].GHz = f / 1e9
		for k, s := range n.S[i] {
			rows[i].DB[k] = DB(s)
		}
	}
	return rows
}
