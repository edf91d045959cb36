package chainreg

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/certops/chainresync/wsman"
)

// wmiInvoker is the slice of wsman.Client the management-query strategy
// needs; abstracted for testing.
type wmiInvoker interface {
	Invoke(ctx context.Context, resourceURI, method string, input any) ([]byte, error)
}

// StdRegProv return codes this strategy branches on (Win32 error codes).
const (
	regOK           = 0
	regNotFound     = 2 // ERROR_FILE_NOT_FOUND
	regAccessDenied = 5 // ERROR_ACCESS_DENIED
)

// mgmtStrategy performs registry operations via the StdRegProv WMI class,
// invoked over WSMan.
type mgmtStrategy struct {
	dial func(host string) (wmiInvoker, error)
}

func newMgmtStrategy(cfg *Config) *mgmtStrategy {
	return &mgmtStrategy{
		dial: func(host string) (wmiInvoker, error) {
			return cfg.dial(host)
		},
	}
}

// stdRegInput is the _INPUT element for the StdRegProv binary-value
// methods. Data is only populated for SetBinaryValue; each byte travels
// as its own uValue element.
type stdRegInput struct {
	XMLName xml.Name
	NS      string `xml:"xmlns:p,attr"`
	DefKey  uint64 `xml:"p:hDefKey"`
	SubKey  string `xml:"p:sSubKeyName"`
	Value   string `xml:"p:sValueName,omitempty"`
	Data    []int  `xml:"p:uValue,omitempty"`
}

// stdRegOutput carries the fields shared by every _OUTPUT element.
type stdRegOutput struct {
	ReturnValue int   `xml:"ReturnValue"`
	Data        []int `xml:"uValue"`
}

// newInput builds the input body for a StdRegProv method call.
func newInput(method, keyPath, valueName string, data []byte) *stdRegInput {
	in := &stdRegInput{
		XMLName: xml.Name{Local: "p:" + method + "_INPUT"},
		NS:      wsman.ResourceURIStdRegProv,
		DefKey:  HiveLocalMachine,
		SubKey:  subKeyPath(keyPath),
		Value:   valueName,
	}
	for _, b := range data {
		in.Data = append(in.Data, int(b))
	}
	return in
}

// decodeOutput finds and decodes the method's _OUTPUT element in a SOAP
// response body.
func decodeOutput(resp []byte, method string) (*stdRegOutput, error) {
	want := method + "_OUTPUT"
	dec := xml.NewDecoder(bytes.NewReader(resp))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("no %s element in response", want)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s response: %w", method, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != want {
			continue
		}
		var out stdRegOutput
		if err := dec.DecodeElement(&out, &se); err != nil {
			return nil, fmt.Errorf("parse %s response: %w", method, err)
		}
		return &out, nil
	}
}

// call invokes one StdRegProv method and decodes its output.
func (s *mgmtStrategy) call(ctx context.Context, host, method, keyPath, valueName string, data []byte) (*stdRegOutput, error) {
	c, err := s.dial(host)
	if err != nil {
		return nil, err
	}

	resp, err := c.Invoke(ctx, wsman.ResourceURIStdRegProv, method, newInput(method, keyPath, valueName, data))
	if err != nil {
		return nil, err
	}
	return decodeOutput(resp, method)
}

// returnError maps a nonzero StdRegProv return code to a classified error.
func returnError(host, method string, code int) error {
	kind := KindRemoteFault
	if code == regAccessDenied {
		kind = KindAccessDenied
	}
	return &TransportError{
		Kind: kind,
		Host: host,
		Err:  fmt.Errorf("%s returned %d", method, code),
	}
}

func (s *mgmtStrategy) ReadValue(ctx context.Context, host, keyPath, valueName string) ([]byte, error) {
	out, err := s.call(ctx, host, "GetBinaryValue", keyPath, valueName, nil)
	if err != nil {
		return nil, err
	}

	switch out.ReturnValue {
	case regOK:
		// A null uValue with a zero return means no value is configured
		if out.Data == nil {
			return nil, nil
		}
		data := make([]byte, len(out.Data))
		for i, v := range out.Data {
			if v < 0 || v > 0xFF {
				return nil, fmt.Errorf("GetBinaryValue byte %d out of range: %d", i, v)
			}
			data[i] = byte(v)
		}
		return data, nil
	case regNotFound:
		return nil, nil
	default:
		return nil, returnError(host, "GetBinaryValue", out.ReturnValue)
	}
}

func (s *mgmtStrategy) WriteValue(ctx context.Context, host, keyPath, valueName string, data []byte) error {
	// CreateKey first: SetBinaryValue does not create missing subkeys
	out, err := s.call(ctx, host, "CreateKey", keyPath, "", nil)
	if err != nil {
		return err
	}
	if out.ReturnValue != regOK {
		return returnError(host, "CreateKey", out.ReturnValue)
	}

	out, err = s.call(ctx, host, "SetBinaryValue", keyPath, valueName, data)
	if err != nil {
		return err
	}
	if out.ReturnValue != regOK {
		return returnError(host, "SetBinaryValue", out.ReturnValue)
	}
	return nil
}

func (s *mgmtStrategy) DeleteValue(ctx context.Context, host, keyPath, valueName string) error {
	out, err := s.call(ctx, host, "DeleteValue", keyPath, valueName, nil)
	if err != nil {
		return err
	}

	switch out.ReturnValue {
	case regOK, regNotFound:
		// Already absent counts as deleted
		return nil
	default:
		return returnError(host, "DeleteValue", out.ReturnValue)
	}
}
