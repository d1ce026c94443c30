package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"

	"github.com/koscakluka/ema-chat/core/api"
	"github.com/koscakluka/ema-chat/core/audio"
	"go.opentelemetry.io/otel/attribute"
)

const (
	recordingField    = "audio_file"
	recordingFilename = "recording.wav"
)

type textToSpeechRequestBody struct {
	Text string `json:"text" jsonschema:"title=Text,description=Text to speak"`
}

// errorResponseBody is what the speech endpoints send instead of a result.
type errorResponseBody struct {
	Error string `json:"error" jsonschema:"title=Error"`
}

type speechToTextResponseBody struct {
	Text  *string `json:"text,omitempty" jsonschema:"title=Text,description=Recognized text"`
	Error *string `json:"error,omitempty" jsonschema:"title=Error"`
}

// Synthesize requests speech for text and decodes the returned MP3 into PCM.
// The endpoint reports its own failures as a JSON body, which is returned
// as api.ErrSynthesis.
func (c *Client) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(attribute.Int("request.text_length", len(text)))

	requestBodyBytes, err := json.Marshal(textToSpeechRequestBody{Text: text})
	if err != nil {
		err = fmt.Errorf("failed to marshal request body: %w", err)
		span.RecordError(err)
		return audio.Clip{}, err
	}

	resp, err := c.post(ctx, textToSpeechPath, "application/json", bytes.NewReader(requestBodyBytes))
	if err != nil {
		span.RecordError(err)
		return audio.Clip{}, err
	}
	defer resp.Body.Close()

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("%w: failed to read audio: %w", api.ErrNetwork, err)
		span.RecordError(err)
		return audio.Clip{}, err
	}

	if mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mediaType == "application/json" {
		err := fmt.Errorf("%w: %s", api.ErrSynthesis, describeErrorBody(respBodyBytes))
		span.RecordError(err)
		return audio.Clip{}, err
	}

	clip, err := audio.DecodeMP3(respBodyBytes)
	if err != nil {
		err = fmt.Errorf("%w: %w", api.ErrSynthesis, err)
		span.RecordError(err)
		return audio.Clip{}, err
	}
	span.SetAttributes(attribute.String("response.duration", clip.Duration().String()))

	return clip, nil
}

// Transcribe uploads clip as a WAV file and returns the recognized text.
// An in-band error from the endpoint is returned as api.ErrTranscription.
func (c *Client) Transcribe(ctx context.Context, clip audio.Clip) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe speech")
	defer span.End()
	span.SetAttributes(attribute.String("request.duration", clip.Duration().String()))

	wav, err := audio.EncodeWAV(clip)
	if err != nil {
		err = fmt.Errorf("%w: failed to encode recording: %w", api.ErrTranscription, err)
		span.RecordError(err)
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, recordingField, recordingFilename))
	header.Set("Content-Type", "audio/wav")
	part, err := writer.CreatePart(header)
	if err == nil {
		_, err = part.Write(wav)
	}
	if err == nil {
		err = writer.Close()
	}
	if err != nil {
		err = fmt.Errorf("failed to build multipart body: %w", err)
		span.RecordError(err)
		return "", err
	}

	resp, err := c.post(ctx, speechToTextPath, writer.FormDataContentType(), &body)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	defer resp.Body.Close()

	var responseBody speechToTextResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		err = fmt.Errorf("%w: failed to unmarshal response: %w", api.ErrDecode, err)
		span.RecordError(err)
		return "", err
	}

	switch {
	case responseBody.Error != nil:
		err := fmt.Errorf("%w: %s", api.ErrTranscription, *responseBody.Error)
		span.RecordError(err)
		return "", err
	case responseBody.Text == nil:
		err := fmt.Errorf("%w: response has neither text nor error", api.ErrDecode)
		span.RecordError(err)
		return "", err
	}

	return *responseBody.Text, nil
}

func describeErrorBody(body []byte) string {
	var errorBody errorResponseBody
	if err := json.Unmarshal(body, &errorBody); err != nil || errorBody.Error == "" {
		return "backend returned no audio"
	}
	return errorBody.Error
}
