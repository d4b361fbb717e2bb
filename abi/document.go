package abi

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/redecomp/goreginfo/regerrors"
)

// Document-layer types are a faithful image of the register info markup.
// Attribute values stay raw strings here; CompileDocument turns records
// into typed Profiles. An optional child carrying register="" means "no
// such register in this profile", not a parse error, so bindings keep
// the empty string until compile time.

type SDocument struct {
	XMLName xml.Name        `xml:"golang" json:"-"`
	Records []SRegisterInfo `xml:"register_info" json:"register_info"`
}

type SRegisterInfo struct {
	Versions         string       `xml:"versions,attr" json:"versions"`
	IntRegisters     SRegList     `xml:"int_registers" json:"int_registers"`
	FloatRegisters   SRegList     `xml:"float_registers" json:"float_registers"`
	Stack            SStack       `xml:"stack" json:"stack"`
	CurrentGoroutine *SRegBinding `xml:"current_goroutine" json:"current_goroutine,omitempty"`
	ZeroRegister     *SRegBinding `xml:"zero_register" json:"zero_register,omitempty"`
	DuffZero         *SDuffZero   `xml:"duffzero" json:"duffzero,omitempty"`
	ClosureContext   *SRegBinding `xml:"closure_context" json:"closure_context,omitempty"`
}

type SRegList struct {
	List string `xml:"list,attr" json:"list"`
}

type SStack struct {
	InitialOffset string `xml:"initialoffset,attr" json:"initialoffset"`
	MaxAlign      string `xml:"maxalign,attr" json:"maxalign"`
}

type SRegBinding struct {
	Register string `xml:"register,attr" json:"register"`
}

type SDuffZero struct {
	Dest     string `xml:"dest,attr" json:"dest"`
	Zero     string `xml:"zero,attr,omitempty" json:"zero,omitempty"`
	ZeroKind string `xml:"zero_kind,attr,omitempty" json:"zero_kind,omitempty"`
}

// ParseDocument decodes a register info document. Malformed markup is
// fatal; no record of the document is usable.
func ParseDocument(data []byte) (*SDocument, error) {
	var doc SDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%v: %w", err, regerrors.ErrDMalformedDocument)
	}
	if len(doc.Records) == 0 {
		return nil, regerrors.ErrDEmptyDocument
	}
	return &doc, nil
}

// Encode re-serializes the document. Formatting is normalized but every
// record keeps its attributes and attribute values unchanged, so
// ParseDocument(doc.Encode()) reproduces doc exactly.
func (doc *SDocument) Encode() ([]byte, error) {
	buf := bytes.NewBufferString(xml.Header)
	enc := xml.NewEncoder(buf)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding failed: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
