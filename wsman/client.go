package wsman

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Transport delivers a marshaled SOAP envelope and returns the raw response
// body. Implemented by transport.HTTPTransport; abstracted for testing.
type Transport interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

// Client is a WSMan client for communicating with a WinRM endpoint.
type Client struct {
	endpoint  string
	transport Transport
	sessionID string
}

// NewClient creates a new WSMan client for the given endpoint URL.
func NewClient(endpoint string, tr Transport) *Client {
	return &Client{
		endpoint:  endpoint,
		transport: tr,
		sessionID: "uuid:" + strings.ToUpper(uuid.New().String()),
	}
}

// Endpoint returns the endpoint URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// newEnvelope builds an envelope with the headers every operation shares.
func (c *Client) newEnvelope(action, resourceURI string) *Envelope {
	return NewEnvelope().
		WithAction(action).
		WithTo(c.endpoint).
		WithResourceURI(resourceURI).
		WithMessageID("uuid:" + strings.ToUpper(uuid.New().String())).
		WithReplyTo(AddressAnonymous).
		WithMaxEnvelopeSize(153600).
		WithOperationTimeout("PT60S").
		WithLocale("en-US")
}

// Invoke calls a method on a WMI provider class addressed by resourceURI.
// The input value is marshaled as the SOAP body (it must carry its own
// namespace attributes). The raw response body is returned for the caller
// to unmarshal the matching _OUTPUT element.
func (c *Client) Invoke(ctx context.Context, resourceURI, method string, input any) ([]byte, error) {
	body, err := xml.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal %s input: %w", method, err)
	}

	env := c.newEnvelope(MethodAction(resourceURI, method), resourceURI).
		WithBody(body)

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", method, err)
	}
	return respBody, nil
}

// CreateShell creates a WinRS (cmd.exe) shell and returns its endpoint
// reference. Options are passed as WSMan operation options (e.g.
// WINRS_NOPROFILE).
func (c *Client) CreateShell(ctx context.Context, options map[string]string) (*EndpointReference, error) {
	env := c.newEnvelope(ActionCreate, ResourceURIWinRS).
		WithShellNamespace()

	for name, value := range options {
		env.WithOption(name, value)
	}

	shellID := strings.ToUpper(uuid.New().String())
	shellBody := `<rsp:Shell ShellId="` + shellID + `" xmlns:rsp="` + NsShell + `">
  <rsp:InputStreams>stdin</rsp:InputStreams>
  <rsp:OutputStreams>stdout stderr</rsp:OutputStreams>
</rsp:Shell>`
	env.WithBody([]byte(shellBody))

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return nil, fmt.Errorf("create shell: %w", err)
	}

	var resp createResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse create response: %w", err)
	}

	epr := &EndpointReference{
		Address:     resp.Body.ResourceCreated.Address,
		ResourceURI: resp.Body.ResourceCreated.ReferenceParameters.ResourceURI,
		Selectors:   resp.Body.ResourceCreated.ReferenceParameters.SelectorSet.Selectors,
	}
	if epr.ResourceURI == "" {
		epr.ResourceURI = ResourceURIWinRS
	}

	return epr, nil
}

// Command starts a command in the shell and returns the command ID.
// Each argument is carried in its own rsp:Arguments element; nothing is
// interpolated into a command line on this side of the wire.
func (c *Client) Command(ctx context.Context, epr *EndpointReference, executable string, args []string) (string, error) {
	env := c.newEnvelope(ActionCommand, epr.ResourceURI).
		WithShellNamespace()

	for _, s := range epr.Selectors {
		env.WithSelector(s.Name, s.Value)
	}

	var body bytes.Buffer
	body.WriteString(`<rsp:CommandLine xmlns:rsp="` + NsShell + `">`)
	body.WriteString(`<rsp:Command>`)
	body.WriteString(xmlEscape(executable))
	body.WriteString(`</rsp:Command>`)
	for _, arg := range args {
		body.WriteString(`<rsp:Arguments>`)
		body.WriteString(xmlEscape(arg))
		body.WriteString(`</rsp:Arguments>`)
	}
	body.WriteString(`</rsp:CommandLine>`)
	env.WithBody(body.Bytes())

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		return "", fmt.Errorf("start command: %w", err)
	}

	var resp commandResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("parse command response: %w", err)
	}

	return resp.Body.CommandResponse.CommandID, nil
}

// ReceiveResult contains the result of one Receive operation.
type ReceiveResult struct {
	Stdout       []byte
	Stderr       []byte
	CommandState string
	ExitCode     int
	Done         bool
}

// Receive retrieves output from a command's output streams. A server-side
// operation timeout yields an empty result, not an error, so the caller
// can poll again.
func (c *Client) Receive(ctx context.Context, epr *EndpointReference, commandID string) (*ReceiveResult, error) {
	env := c.newEnvelope(ActionReceive, epr.ResourceURI).
		WithOperationTimeout("PT20S").
		WithShellNamespace()

	for _, s := range epr.Selectors {
		env.WithSelector(s.Name, s.Value)
	}

	env.WithBody([]byte(`<rsp:Receive xmlns:rsp="` + NsShell + `">` +
		`<rsp:DesiredStream CommandId="` + commandID + `">stdout stderr</rsp:DesiredStream>` +
		`</rsp:Receive>`))

	respBody, err := c.sendEnvelope(ctx, env)
	if err != nil {
		var f *Fault
		if errors.As(err, &f) && f.IsTimeout() {
			return &ReceiveResult{}, nil
		}
		return nil, fmt.Errorf("receive: %w", err)
	}

	var resp receiveResponse
	if err := xml.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("parse receive response: %w", err)
	}

	result := &ReceiveResult{}
	for _, stream := range resp.Body.ReceiveResponse.Streams {
		decoded, err := base64.StdEncoding.DecodeString(stream.Content)
		if err != nil {
			continue // skip invalid base64
		}
		switch stream.Name {
		case "stdout":
			result.Stdout = append(result.Stdout, decoded...)
		case "stderr":
			result.Stderr = append(result.Stderr, decoded...)
		}
	}

	result.CommandState = resp.Body.ReceiveResponse.CommandState.State
	if resp.Body.ReceiveResponse.CommandState.ExitCode != nil {
		result.ExitCode = *resp.Body.ReceiveResponse.CommandState.ExitCode
		result.Done = true
	}

	return result, nil
}

// Signal sends a control signal to a command.
func (c *Client) Signal(ctx context.Context, epr *EndpointReference, commandID, code string) error {
	env := c.newEnvelope(ActionSignal, epr.ResourceURI).
		WithShellNamespace()

	for _, s := range epr.Selectors {
		env.WithSelector(s.Name, s.Value)
	}

	env.WithBody([]byte(`<rsp:Signal xmlns:rsp="` + NsShell + `" CommandId="` + commandID + `">` +
		`<rsp:Code>` + code + `</rsp:Code>` +
		`</rsp:Signal>`))

	if _, err := c.sendEnvelope(ctx, env); err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	return nil
}

// DeleteShell closes a shell on the server.
func (c *Client) DeleteShell(ctx context.Context, epr *EndpointReference) error {
	env := c.newEnvelope(ActionDelete, epr.ResourceURI)

	for _, s := range epr.Selectors {
		env.WithSelector(s.Name, s.Value)
	}

	if _, err := c.sendEnvelope(ctx, env); err != nil {
		return fmt.Errorf("delete shell: %w", err)
	}
	return nil
}

// sendEnvelope marshals and sends a SOAP envelope, returning the response
// body. SOAP faults in successful HTTP responses surface as *Fault errors.
func (c *Client) sendEnvelope(ctx context.Context, env *Envelope) ([]byte, error) {
	body, err := env.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	respBody, err := c.transport.Post(ctx, c.endpoint, body)
	if err != nil {
		return nil, err
	}

	if err := CheckFault(respBody); err != nil {
		return nil, fmt.Errorf("wsman: %w", err)
	}

	return respBody, nil
}

// xmlEscape escapes a string for inclusion as XML character data.
func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Response types for XML parsing.

type createResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		ResourceCreated struct {
			Address             string `xml:"Address"`
			ReferenceParameters struct {
				ResourceURI string `xml:"ResourceURI"`
				SelectorSet struct {
					Selectors []Selector `xml:"Selector"`
				} `xml:"SelectorSet"`
			} `xml:"ReferenceParameters"`
		} `xml:"ResourceCreated"`
	} `xml:"Body"`
}

type commandResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		CommandResponse struct {
			CommandID string `xml:"CommandId"`
		} `xml:"http://schemas.microsoft.com/wbem/wsman/1/windows/shell CommandResponse"`
	} `xml:"Body"`
}

type receiveResponse struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		ReceiveResponse struct {
			Streams []struct {
				Name      string `xml:"Name,attr"`
				CommandID string `xml:"CommandId,attr"`
				Content   string `xml:",chardata"`
			} `xml:"Stream"`
			CommandState struct {
				CommandID string `xml:"CommandId,attr"`
				State     string `xml:"State,attr"`
				ExitCode  *int   `xml:"ExitCode"`
			} `xml:"CommandState"`
		} `xml:"ReceiveResponse"`
	} `xml:"Body"`
}
