package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, WithHTTPClient(server.Client()))
}

func respondJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestOrchestrateSendsRequestBody(t *testing.T) {
	var received map[string]any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, orchestratePath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respondJSON(w, http.StatusOK, `{"type":"chat","data":"hi there"}`)
	})

	response, err := client.Orchestrate(context.Background(), api.Request{
		Text:    "hello",
		Model:   api.ModelGPT41,
		Context: map[string]any{"project": "ema"},
	})
	require.NoError(t, err)
	require.Equal(t, api.Chat{Reply: "hi there"}, response)

	require.Equal(t, "hello", received["text"])
	require.Equal(t, "gpt-4.1", received["model"])
	require.Equal(t, map[string]any{"project": "ema"}, received["context"])
}

func TestOrchestrateSendsEmptyContextObject(t *testing.T) {
	var received map[string]json.RawMessage
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respondJSON(w, http.StatusOK, `{"type":"chat","data":"ok"}`)
	})

	_, err := client.Orchestrate(context.Background(), api.Request{Text: "hello", Model: api.ModelGPT4o})
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(received["context"]))
}

func TestOrchestrateDecodesVariants(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want api.Response
	}{
		{
			name: "conversation",
			body: `{"type":"conversation","data":[{"sender":"Coder","text":"done"},{"sender":"Product_Manager","text":"thanks"}]}`,
			want: api.Conversation{Entries: []api.ConversationEntry{
				{Sender: "Coder", Text: "done"},
				{Sender: "Product_Manager", Text: "thanks"},
			}},
		},
		{
			name: "report",
			body: `{"type":"report","data":{"initial_prompt":"a","worker_result":"b","critic_feedback":"c","new_prompt":"d"}}`,
			want: api.Report{InitialPrompt: "a", WorkerResult: "b", CriticFeedback: "c", NewPrompt: "d"},
		},
		{
			name: "error",
			body: `{"type":"error","data":"quota exceeded"}`,
			want: api.ErrorReply{Message: "quota exceeded"},
		},
		{
			name: "unknown type",
			body: `{"type":"poem","data":"roses"}`,
			want: api.Unrecognized{Type: "poem"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, tc.body)
			})

			response, err := client.Orchestrate(context.Background(), api.Request{Text: "x", Model: api.DefaultModel})
			require.NoError(t, err)
			require.Equal(t, tc.want, response)
		})
	}
}

func TestOrchestrateNonSuccessStatusIsNetworkFailure(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusBadGateway, `{"detail":"upstream"}`)
	})

	_, err := client.Orchestrate(context.Background(), api.Request{Text: "x", Model: api.DefaultModel})
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestOrchestrateMalformedPayloadIsDecodeFailure(t *testing.T) {
	for name, body := range map[string]string{
		"not json":        `<html>oops</html>`,
		"missing type":    `{"data":"x"}`,
		"wrong data type": `{"type":"conversation","data":"not a list"}`,
		"missing data":    `{"type":"chat"}`,
		"null data":       `{"type":"chat","data":null}`,
		"empty report":    `{"type":"report","data":{}}`,
		"entry no sender": `{"type":"conversation","data":[{"text":"x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				respondJSON(w, http.StatusOK, body)
			})

			_, err := client.Orchestrate(context.Background(), api.Request{Text: "x", Model: api.DefaultModel})
			require.ErrorIs(t, err, api.ErrDecode)
		})
	}
}

func TestOrchestrateUnreachableBackendIsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url).Orchestrate(context.Background(), api.Request{Text: "x", Model: api.DefaultModel})
	require.ErrorIs(t, err, api.ErrNetwork)
}

func TestSchemasDescribeWireBodies(t *testing.T) {
	schemas := Schemas()
	require.NotEmpty(t, schemas)

	for _, schema := range schemas {
		require.NotNil(t, schema.Schema, schema.Name)
		_, err := json.Marshal(schema.Schema)
		require.NoError(t, err, schema.Name)
	}

	request := schemas[0]
	require.Equal(t, "orchestrate.request", request.Name)
	_, ok := request.Schema.Properties.Get("text")
	require.True(t, ok)
}
