package orchestration

import (
	"fmt"
	"strings"

	"github.com/koscakluka/ema-chat/core/api"
)

// DefaultCoordinatorRole is the conversation sender shown on the user's side
// of the transcript.
const DefaultCoordinatorRole = "Product_Manager"

const reportTemplate = `**Self-improvement cycle complete**

**Initial prompt:**
%s

**Worker result:**
%s

**Critic feedback:**
%s

**New prompt:**
%s`

// Interpret turns a decoded orchestration response into the messages it
// contributes to the transcript, in order. It has no side effects.
//
// Error replies and unknown kinds produce no drafts; they are returned as
// errors (a *api.ServerError and api.ErrUnrecognizedResponse respectively) so
// the caller can decide how to surface them.
func Interpret(response api.Response, coordinatorRole string) ([]MessageDraft, error) {
	switch r := response.(type) {
	case api.Chat:
		return []MessageDraft{assistantDraft(r.Reply)}, nil

	case api.Conversation:
		drafts := make([]MessageDraft, 0, len(r.Entries))
		for _, entry := range r.Entries {
			drafts = append(drafts, MessageDraft{
				Text:   formatConversationEntry(entry),
				IsUser: entry.Sender == coordinatorRole,
			})
		}
		return drafts, nil

	case api.Report:
		return []MessageDraft{
			assistantDraft(formatReport(r)),
			assistantDraft(r.WorkerResult),
		}, nil

	case api.ErrorReply:
		return nil, &api.ServerError{Message: r.Message}

	case api.Unrecognized:
		return nil, fmt.Errorf("%w: kind %q", api.ErrUnrecognizedResponse, r.Type)

	default:
		return nil, fmt.Errorf("%w: %T", api.ErrUnrecognizedResponse, response)
	}
}

func formatConversationEntry(entry api.ConversationEntry) string {
	var b strings.Builder
	b.WriteString("**")
	b.WriteString(entry.Sender)
	b.WriteString(":**\n\n")
	b.WriteString(entry.Text)
	return b.String()
}

func formatReport(report api.Report) string {
	return fmt.Sprintf(reportTemplate,
		report.InitialPrompt,
		report.WorkerResult,
		report.CriticFeedback,
		report.NewPrompt,
	)
}
