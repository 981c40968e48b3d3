package models

// Allocation is one network endpoint configured for a server. At most one
// allocation is expected to be flagged as the default.
type Allocation struct {
	IP        string `json:"ip"`
	Port      uint16 `json:"port"`
	Alias     string `json:"alias,omitempty"`
	IsDefault bool   `json:"is_default"`
}

// Label returns the display name for the endpoint: the alias when one is
// configured, otherwise the raw IP.
func (a Allocation) Label() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.IP
}
