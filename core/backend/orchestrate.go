package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/invopop/jsonschema"
	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-chat/core/api"
	"go.opentelemetry.io/otel/attribute"
)

type orchestrateRequestBody struct {
	Text    string         `json:"text" jsonschema:"title=Text,description=What the user typed or dictated"`
	Model   string         `json:"model" jsonschema:"title=Model,enum=gpt-4.1,enum=gpt-4o"`
	Context map[string]any `json:"context" jsonschema:"title=Context,description=Opaque context forwarded to the backend"`
}

type orchestrateResponseBody struct {
	Type api.Kind        `json:"type" jsonschema:"title=Type,enum=chat,enum=conversation,enum=report,enum=error"`
	Data json.RawMessage `json:"data"`
}

// JSONSchemaExtend describes data as unconstrained; its shape depends on type.
func (orchestrateResponseBody) JSONSchemaExtend(schema *jsonschema.Schema) {
	schema.Properties.Set("data", &jsonschema.Schema{
		Title:       "Data",
		Description: "Reply text for chat and error, a list of entries for conversation, a report object for report",
	})
}

type conversationEntry struct {
	Sender string `json:"sender" jsonschema:"title=Sender"`
	Text   string `json:"text" jsonschema:"title=Text"`
}

type report struct {
	InitialPrompt  string `json:"initial_prompt" jsonschema:"title=Initial prompt"`
	WorkerResult   string `json:"worker_result" jsonschema:"title=Worker result"`
	CriticFeedback string `json:"critic_feedback" jsonschema:"title=Critic feedback"`
	NewPrompt      string `json:"new_prompt" jsonschema:"title=New prompt"`
}

// Orchestrate asks the backend how to answer request. Transport failures
// and non-2xx statuses match api.ErrNetwork, payloads that do not decode
// match api.ErrDecode. An error-tagged payload is a successful call returning
// api.ErrorReply; an unknown tag returns api.Unrecognized.
func (c *Client) Orchestrate(ctx context.Context, request api.Request) (api.Response, error) {
	ctx, span := tracer.Start(ctx, "orchestrate")
	defer span.End()

	var reqBody orchestrateRequestBody
	if err := copier.Copy(&reqBody, &request); err != nil {
		err = fmt.Errorf("failed to build request body: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if reqBody.Context == nil {
		reqBody.Context = map[string]any{}
	}
	span.SetAttributes(attribute.String("request.model", reqBody.Model))

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("failed to marshal request body: %w", err)
		span.RecordError(err)
		return nil, err
	}

	resp, err := c.post(ctx, orchestratePath, "application/json", bytes.NewReader(requestBodyBytes))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: failed to read response body: %w", api.ErrNetwork, err)
		span.RecordError(err)
		return nil, err
	}

	response, err := decodeOrchestrateResponse(respBodyBytes)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("response.type", string(response.Kind())))
	return response, nil
}

func decodeOrchestrateResponse(body []byte) (api.Response, error) {
	var envelope orchestrateResponseBody
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %w", api.ErrDecode, err)
	}
	if envelope.Type == "" {
		return nil, fmt.Errorf("%w: response has no type", api.ErrDecode)
	}

	switch envelope.Type {
	case api.KindChat:
		var reply string
		if err := unmarshalData(envelope, &reply); err != nil {
			return nil, err
		}
		return api.Chat{Reply: reply}, nil

	case api.KindConversation:
		var wireEntries []conversationEntry
		if err := unmarshalData(envelope, &wireEntries); err != nil {
			return nil, err
		}
		for i, entry := range wireEntries {
			if entry.Sender == "" {
				return nil, fmt.Errorf("%w: conversation entry %d has no sender", api.ErrDecode, i)
			}
		}
		var entries []api.ConversationEntry
		if err := copier.Copy(&entries, &wireEntries); err != nil {
			return nil, fmt.Errorf("%w: failed to convert conversation: %w", api.ErrDecode, err)
		}
		return api.Conversation{Entries: entries}, nil

	case api.KindReport:
		var wireReport report
		if err := unmarshalData(envelope, &wireReport); err != nil {
			return nil, err
		}
		if wireReport.WorkerResult == "" {
			return nil, fmt.Errorf("%w: report has no worker_result", api.ErrDecode)
		}
		var converted api.Report
		if err := copier.Copy(&converted, &wireReport); err != nil {
			return nil, fmt.Errorf("%w: failed to convert report: %w", api.ErrDecode, err)
		}
		return converted, nil

	case api.KindError:
		var message string
		if err := unmarshalData(envelope, &message); err != nil {
			return nil, err
		}
		return api.ErrorReply{Message: message}, nil

	default:
		return api.Unrecognized{Type: string(envelope.Type)}, nil
	}
}

func unmarshalData(envelope orchestrateResponseBody, target any) error {
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: %s response has no data", api.ErrDecode, envelope.Type)
	}
	if err := json.Unmarshal(envelope.Data, target); err != nil {
		return fmt.Errorf("%w: malformed %s data: %w", api.ErrDecode, envelope.Type, err)
	}
	return nil
}
