package orchestration

import events "github.com/koscakluka/ema-chat/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}
