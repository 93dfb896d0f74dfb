package events

import "github.com/atomicstack/piradio/internal/logging"

type AppTracer struct{}

var App = AppTracer{}

func (AppTracer) Start(payload map[string]interface{}) {
	logging.Trace("app.start", payload)
}

func (AppTracer) Stop(reason string) {
	logging.Trace("app.stop", map[string]interface{}{"reason": reason})
}

func (AppTracer) HardwareRetry(attempt int, err error) {
	logging.Trace("app.hardware-retry", map[string]interface{}{"attempt": attempt, "error": err.Error()})
}
