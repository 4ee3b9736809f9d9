package errors

import (
	stderrors "errors"

	"github.com/sashabaranov/go-openai"
)

// FromOpenAI classifies a go-openai client error into the taxonomy.
// operation names the outbound call for transport-error messages
// (e.g. "transcription", "emotion analysis").
func FromOpenAI(err error, operation string) *AppError {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return FromUpstreamStatus(apiErr.HTTPStatusCode, apiErr.Message).WithCause(err)
	}

	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return FromUpstreamStatus(reqErr.HTTPStatusCode, reqErr.Error()).WithCause(err)
	}

	// Anything else is network-level: timeout, DNS failure, refused connection.
	return Transport(operation).WithCause(err)
}
