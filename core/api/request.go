package api

// Model selects which backend model answers a chat-style request.
type Model string

const (
	ModelGPT41 Model = "gpt-4.1"
	ModelGPT4o Model = "gpt-4o"

	DefaultModel = ModelGPT41
)

// Models lists the selectable models in picker order.
func Models() []Model { return []Model{ModelGPT41, ModelGPT4o} }

func (m Model) IsValid() bool {
	switch m {
	case ModelGPT41, ModelGPT4o:
		return true
	}
	return false
}

// Next cycles through Models, used by pickers that toggle in place.
func (m Model) Next() Model {
	models := Models()
	for i, model := range models {
		if model == m {
			return models[(i+1)%len(models)]
		}
	}
	return DefaultModel
}

// Request is built fresh for every send and never retained.
type Request struct {
	Text    string
	Model   Model
	Context map[string]any
}
