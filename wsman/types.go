package wsman

// EndpointReference represents a WS-Addressing Endpoint Reference (EPR).
// It identifies the shell instance created on the server.
type EndpointReference struct {
	Address     string     `xml:"Address"`
	ResourceURI string     `xml:"ReferenceParameters>ResourceURI"`
	Selectors   []Selector `xml:"ReferenceParameters>SelectorSet>Selector"`
}

// Selector represents a WS-Management selector.
type Selector struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
}

// ShellID returns the ShellId selector of the reference, if present.
func (epr *EndpointReference) ShellID() string {
	for _, s := range epr.Selectors {
		if s.Name == "ShellId" {
			return s.Value
		}
	}
	return ""
}
