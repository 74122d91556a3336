package models

const (
	// ModelTurnMarker separates the echoed prompt from the model's answer
	// in the local model's completion.
	ModelTurnMarker = "<start_of_turn>model"

	// FallbackAnswer is returned when the completion is empty or the
	// marker is missing.
	FallbackAnswer = "I don't know."
)

var (
	// RAGPromptTemplate takes the question and the concatenated retrieved
	// segments, in that order.
	RAGPromptTemplate = `<bos><start_of_turn>user
%s
You are a helpful assistant. Answer the query by using the reports in quote:
"%s"
If you are not confident then say I don't know.<end_of_turn>
<start_of_turn>model
`

	// ExtractUserPrompt is the fixed reinforcement instruction sent as the
	// user message on every extraction call.
	ExtractUserPrompt = `Fill out the JSON schema with the appropriate information extracted from the paragraph. Ensure that the keys match the provided schema, and provide the values for composition name, property name, value, unit, and measurement condition accordingly.`
)
