// Package imfile reads the bias commands of an instrument measurement (.im)
// XML file.
package imfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNoRoot is returned for a file without any XML element.
var ErrNoRoot = errors.New("no root element")

// Columns names the BiasCommand attributes in table order.
var Columns = []string{"Access", "Unit", "Quiescent", "Pulse"}

// BiasCommand is one biasingcmd element. Missing attributes are empty.
type BiasCommand struct {
	Access    string
	Unit      string
	Quiescent string
	Pulse     string
}

// Cells returns the attributes in Columns order.
func (c BiasCommand) Cells() []string {
	return []string{c.Access, c.Unit, c.Quiescent, c.Pulse}
}

// Load reads the bias commands of the file at path.
func Load(path string) ([]BiasCommand, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cmds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cmds, nil
}

// Parse returns every biasingcmd element below the document root, in
// document order. The root element itself is not a command.
func Parse(r io.Reader) ([]BiasCommand, error) {
	dec := xml.NewDecoder(r)
	cmds := []BiasCommand{}
	depth := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			depth++
			sawRoot = true
			if depth > 1 && el.Name.Space == "" && el.Name.Local == "biasingcmd" {
				cmds = append(cmds, biasCommand(el.Attr))
			}
		case xml.EndElement:
			depth--
		}
	}
	if !sawRoot {
		return nil, ErrNoRoot
	}
	return cmds, nil
}

func biasCommand(attrs []xml.Attr) BiasCommand {
	var c BiasCommand
	for _, a := range attrs {
		if a.Name.Space != "" {
			continue
		}
		switch a.Name.Local {
		case "access":
			c.Access = a.Value
		case "unit":
			c.Unit = a.Value
		case "quiescent":
			c.Quiescent = a.Value
		case "pulse":
			c.Pulse = a.Value
		}
	}
	return c
}
