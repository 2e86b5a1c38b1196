package model

// ContextBlock is the packed context handed to the language model.
// Size is the estimated size of Text in budget units. Truncated reports
// that packing stopped with candidate chunks remaining.
type ContextBlock struct {
	Text      string `json:"text"`
	Chunks    int    `json:"chunks"`
	Size      int    `json:"size"`
	Truncated bool   `json:"truncated"`
}
