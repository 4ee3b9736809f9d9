package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TranscriptionRecord is the persisted result of one completed pipeline run.
// One record is written per successful run; records are never mutated.
type TranscriptionRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Transcription    string             `bson:"transcription" json:"transcription"`
	Language         string             `bson:"language" json:"language"`
	Duration         float64            `bson:"duration" json:"duration"`
	OriginalFilename string             `bson:"original_filename" json:"originalFilename"`
	Emotion          string             `bson:"emotion" json:"emotion"`
	Tone             string             `bson:"tone" json:"tone"`
	EmotionReason    string             `bson:"emotion_reason" json:"emotionReason"`
	CreatedAt        time.Time          `bson:"created_at" json:"createdAt"`
}
