package session

// Wire messages for the interview websocket. One connection per interview;
// audio payloads travel base64-encoded inside JSON frames.

type clientMessage struct {
	Type string `json:"type"` // "audio" or "end"
	Data string `json:"data,omitempty"`
}

type serverMessage struct {
	Type     string    `json:"type"` // "audio", "status", "error"
	Data     string    `json:"data,omitempty"`
	Metadata *metadata `json:"metadata,omitempty"`
	Status   string    `json:"status,omitempty"`
	Message  string    `json:"message,omitempty"`
}

type metadata struct {
	Text        string `json:"text"`
	Stage       string `json:"stage"`
	Turn        int    `json:"turn"`
	InterviewID string `json:"interview_id,omitempty"`
}
