package wsman

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
)

// fakeTransport records posted envelopes and replies with a scripted body.
type fakeTransport struct {
	requests  [][]byte
	responses [][]byte
	err       error
}

func (f *fakeTransport) Post(_ context.Context, _ string, body []byte) ([]byte, error) {
	f.requests = append(f.requests, body)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return []byte(`<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope"><s:Body/></s:Envelope>`), nil
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *fakeTransport) lastRequest(t *testing.T) string {
	t.Helper()
	if len(f.requests) == 0 {
		t.Fatal("no request was sent")
	}
	return string(f.requests[len(f.requests)-1])
}

func TestClient_Invoke(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient("http://server:5985/wsman", tr)

	type input struct {
		XMLName struct{} `xml:"p:GetBinaryValue_INPUT"`
		NS      string   `xml:"xmlns:p,attr"`
		DefKey  uint64   `xml:"p:hDefKey"`
	}
	_, err := c.Invoke(context.Background(), ResourceURIStdRegProv, "GetBinaryValue", &input{
		NS:     ResourceURIStdRegProv,
		DefKey: 0x80000002,
	})
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}

	req := tr.lastRequest(t)
	if !strings.Contains(req, ResourceURIStdRegProv+"/GetBinaryValue") {
		t.Error("action header missing method action URI")
	}
	if !strings.Contains(req, "GetBinaryValue_INPUT") {
		t.Error("body missing _INPUT element")
	}
	if !strings.Contains(req, "2147483650") {
		t.Error("body missing hDefKey value")
	}
}

func TestClient_Invoke_Fault(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(accessDeniedFault)}}
	c := NewClient("http://server:5985/wsman", tr)

	_, err := c.Invoke(context.Background(), ResourceURIStdRegProv, "GetBinaryValue", struct {
		XMLName struct{} `xml:"p:GetBinaryValue_INPUT"`
	}{})
	if err == nil {
		t.Fatal("expected fault error")
	}
	if !IsFault(err) {
		t.Errorf("error is not a fault: %v", err)
	}
}

const createShellResponse = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope" xmlns:a="http://schemas.xmlsoap.org/ws/2004/08/addressing" xmlns:w="http://schemas.dmtf.org/wbem/wsman/1/wsman.xsd" xmlns:x="http://schemas.xmlsoap.org/ws/2004/09/transfer">
  <s:Body>
    <x:ResourceCreated>
      <a:Address>http://server:5985/wsman</a:Address>
      <a:ReferenceParameters>
        <w:ResourceURI>http://schemas.microsoft.com/wbem/wsman/1/windows/shell/cmd</w:ResourceURI>
        <w:SelectorSet>
          <w:Selector Name="ShellId">D5A2622B-3B21-4B28-8371-E6C46D4DB1A5</w:Selector>
        </w:SelectorSet>
      </a:ReferenceParameters>
    </x:ResourceCreated>
  </s:Body>
</s:Envelope>`

func TestClient_CreateShell(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(createShellResponse)}}
	c := NewClient("http://server:5985/wsman", tr)

	epr, err := c.CreateShell(context.Background(), map[string]string{"WINRS_NOPROFILE": "TRUE"})
	if err != nil {
		t.Fatalf("CreateShell error: %v", err)
	}

	if epr.ShellID() != "D5A2622B-3B21-4B28-8371-E6C46D4DB1A5" {
		t.Errorf("ShellID = %q", epr.ShellID())
	}
	if epr.ResourceURI != ResourceURIWinRS {
		t.Errorf("ResourceURI = %q", epr.ResourceURI)
	}

	req := tr.lastRequest(t)
	if !strings.Contains(req, "WINRS_NOPROFILE") {
		t.Error("option WINRS_NOPROFILE not sent")
	}
	if !strings.Contains(req, "<rsp:InputStreams>stdin</rsp:InputStreams>") {
		t.Error("shell body missing input streams")
	}
}

const commandResponseBody = `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope" xmlns:rsp="http://schemas.microsoft.com/wbem/wsman/1/windows/shell">
  <s:Body>
    <rsp:CommandResponse>
      <rsp:CommandId>77DF824E-61A4-4C43-85E1-1A444B0C4897</rsp:CommandId>
    </rsp:CommandResponse>
  </s:Body>
</s:Envelope>`

func TestClient_Command(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(commandResponseBody)}}
	c := NewClient("http://server:5985/wsman", tr)

	epr := &EndpointReference{
		ResourceURI: ResourceURIWinRS,
		Selectors:   []Selector{{Name: "ShellId", Value: "SHELL-1"}},
	}
	id, err := c.Command(context.Background(), epr, "reg.exe", []string{"query", `HKLM\SOFTWARE`, "/v", "Value & Name"})
	if err != nil {
		t.Fatalf("Command error: %v", err)
	}
	if id != "77DF824E-61A4-4C43-85E1-1A444B0C4897" {
		t.Errorf("command ID = %q", id)
	}

	req := tr.lastRequest(t)
	if !strings.Contains(req, "<rsp:Command>reg.exe</rsp:Command>") {
		t.Error("executable not sent as Command element")
	}
	// Each argument travels in its own element
	if strings.Count(req, "<rsp:Arguments>") != 4 {
		t.Errorf("want 4 Arguments elements, got %d", strings.Count(req, "<rsp:Arguments>"))
	}
	if !strings.Contains(req, "Value &amp; Name") {
		t.Error("argument not XML-escaped")
	}
	if !strings.Contains(req, `Name="ShellId"`) || !strings.Contains(req, "SHELL-1") {
		t.Error("shell selector not sent")
	}
}

func receiveEnvelope(stdout string, exitCode string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(stdout))
	body := `<s:Envelope xmlns:s="http://www.w3.org/2003/05/soap-envelope" xmlns:rsp="http://schemas.microsoft.com/wbem/wsman/1/windows/shell">
  <s:Body>
    <rsp:ReceiveResponse>
      <rsp:Stream Name="stdout" CommandId="CMD-1">` + encoded + `</rsp:Stream>`
	if exitCode != "" {
		body += `
      <rsp:CommandState CommandId="CMD-1" State="http://schemas.microsoft.com/wbem/wsman/1/windows/shell/CommandState/Done">
        <rsp:ExitCode>` + exitCode + `</rsp:ExitCode>
      </rsp:CommandState>`
	} else {
		body += `
      <rsp:CommandState CommandId="CMD-1" State="http://schemas.microsoft.com/wbem/wsman/1/windows/shell/CommandState/Running"/>`
	}
	body += `
    </rsp:ReceiveResponse>
  </s:Body>
</s:Envelope>`
	return body
}

func TestClient_Receive(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(receiveEnvelope("hello\r\n", "0"))}}
	c := NewClient("http://server:5985/wsman", tr)

	epr := &EndpointReference{ResourceURI: ResourceURIWinRS, Selectors: []Selector{{Name: "ShellId", Value: "SHELL-1"}}}
	result, err := c.Receive(context.Background(), epr, "CMD-1")
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}

	if string(result.Stdout) != "hello\r\n" {
		t.Errorf("Stdout = %q", result.Stdout)
	}
	if !result.Done {
		t.Error("Done = false after exit code")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d", result.ExitCode)
	}
}

func TestClient_Receive_NotDone(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(receiveEnvelope("partial", ""))}}
	c := NewClient("http://server:5985/wsman", tr)

	epr := &EndpointReference{ResourceURI: ResourceURIWinRS}
	result, err := c.Receive(context.Background(), epr, "CMD-1")
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	if result.Done {
		t.Error("Done = true without exit code")
	}
}

// A server-side operation timeout is a poll miss, not a failure.
func TestClient_Receive_OperationTimeout(t *testing.T) {
	tr := &fakeTransport{responses: [][]byte{[]byte(timeoutFault)}}
	c := NewClient("http://server:5985/wsman", tr)

	epr := &EndpointReference{ResourceURI: ResourceURIWinRS}
	result, err := c.Receive(context.Background(), epr, "CMD-1")
	if err != nil {
		t.Fatalf("Receive error: %v", err)
	}
	if result.Done || len(result.Stdout) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestClient_Signal_DeleteShell(t *testing.T) {
	tr := &fakeTransport{}
	c := NewClient("http://server:5985/wsman", tr)

	epr := &EndpointReference{ResourceURI: ResourceURIWinRS, Selectors: []Selector{{Name: "ShellId", Value: "SHELL-1"}}}

	if err := c.Signal(context.Background(), epr, "CMD-1", SignalTerminate); err != nil {
		t.Fatalf("Signal error: %v", err)
	}
	if req := tr.lastRequest(t); !strings.Contains(req, SignalTerminate) {
		t.Error("signal code not sent")
	}

	if err := c.DeleteShell(context.Background(), epr); err != nil {
		t.Fatalf("DeleteShell error: %v", err)
	}
	if req := tr.lastRequest(t); !strings.Contains(req, ActionDelete) {
		t.Error("delete action not sent")
	}
}
