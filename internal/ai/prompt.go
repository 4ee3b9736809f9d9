package ai

import "fmt"

// buildEmotionPrompt builds the single-turn instruction for emotion and
// tone classification. The model is told to reply with JSON only; the
// parser still tolerates wrapped replies.
func buildEmotionPrompt(transcript string) string {
	return fmt.Sprintf(`You are an assistant for an audio transcription and emotion detection app.

The audio was transcribed as:
"%s"

Your job is to analyze this transcript and detect:
1. The main emotion being expressed (e.g., angry, happy, sad, fearful, surprised, neutral, excited, frustrated, anxious).
2. The tone of voice (e.g., serious, sarcastic, casual, excited, polite, aggressive, formal, friendly, nervous, confident).
3. A short and clear reason justifying your detection based on the text.

Important: Reply ONLY in the following JSON format. No explanation outside the JSON.

{
  "emotion": "<detected emotion>",
  "tone": "<detected tone>",
  "reason": "<one sentence explanation>"
}`, transcript)
}
