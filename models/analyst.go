package models

// AgentInfo is the public view of a registry entry.
type AgentInfo struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	Description    string `json:"description"`
	InvestingStyle string `json:"investing_style"`
	Order          int    `json:"order"`
}

// SwarmInfo is a named preset group of analysts.
type SwarmInfo struct {
	Name   string   `json:"name"`
	Agents []string `json:"agents"`
}
