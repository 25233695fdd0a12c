package types

// Row is one raw editor row: cell text keyed by column name.
type Row map[string]string

// FlowRecord is a coerced table row.
type FlowRecord struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Value      float64 `json:"value"`
	Percentage *int    `json:"percentage,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	NodeColor  string  `json:"nodeColor,omitempty"`
	LinkColor  string  `json:"linkColor,omitempty"`
}

type NodeAggregate struct {
	Label              string  `json:"label"`
	OutboundTotal      float64 `json:"outboundTotal"`
	InboundTotal       float64 `json:"inboundTotal"`
	OutboundPercentage float64 `json:"outboundPercentage"`
	InboundPercentage  float64 `json:"inboundPercentage"`
	HasOutbound        bool    `json:"hasOutbound"`
	HasInbound         bool    `json:"hasInbound"`
	HasPercentage      bool    `json:"hasPercentage"`
	Unit               string  `json:"unit,omitempty"`
}

type Node struct {
	Label        string `json:"label"`
	DisplayLabel string `json:"displayLabel"`
	Color        string `json:"color"`
}

type Link struct {
	SourceIndex int     `json:"source"`
	TargetIndex int     `json:"target"`
	Value       float64 `json:"value"`
	Color       string  `json:"color"`
}

// Result is the finalized structure handed to the renderer.
type Result struct {
	Nodes      []Node          `json:"nodes"`
	Links      []Link          `json:"links"`
	Aggregates []NodeAggregate `json:"aggregates"`
	Warnings   []string        `json:"warnings,omitempty"`
}
