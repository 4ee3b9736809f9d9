package stt

// Result represents the result of a speech-to-text transcription
type Result struct {
	Text     string    // The transcribed text
	Language string    // Detected language code, "unknown" if not provided
	Duration float64   // Audio duration in seconds, 0 if not provided
	Segments []Segment // Time-aligned transcript segments, may be empty
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
