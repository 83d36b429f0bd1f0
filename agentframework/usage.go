// Copyright (c) Microsoft. All rights reserved.

package agentframework

// UsageDetails holds token counts for one or more model calls.
type UsageDetails struct {
	InputTokens  int `json:"inputTokenCount,omitempty"`
	OutputTokens int `json:"outputTokenCount,omitempty"`
	TotalTokens  int `json:"totalTokenCount,omitempty"`
}

// Add accumulates other into u. A run that calls tools makes several model
// round-trips, and its usage is the sum of all of them.
func (u *UsageDetails) Add(other UsageDetails) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
