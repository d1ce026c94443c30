package backend

import "github.com/invopop/jsonschema"

// Schema is the JSON Schema of one body exchanged with the backend.
type Schema struct {
	Name   string
	Schema *jsonschema.Schema
}

// Schemas describes every request and response body the client sends or
// expects, in endpoint order.
func Schemas() []Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}

	return []Schema{
		{Name: "orchestrate.request", Schema: reflector.Reflect(&orchestrateRequestBody{})},
		{Name: "orchestrate.response", Schema: reflector.Reflect(&orchestrateResponseBody{})},
		{Name: "orchestrate.conversation_entry", Schema: reflector.Reflect(&conversationEntry{})},
		{Name: "orchestrate.report", Schema: reflector.Reflect(&report{})},
		{Name: "text_to_speech.request", Schema: reflector.Reflect(&textToSpeechRequestBody{})},
		{Name: "text_to_speech.error", Schema: reflector.Reflect(&errorResponseBody{})},
		{Name: "speech_to_text.response", Schema: reflector.Reflect(&speechToTextResponseBody{})},
	}
}
