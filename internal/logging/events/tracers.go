package events

import "github.com/atomicstack/piradio/internal/logging"

type MenuTracer struct{}

type ModeTracer struct{}

type InputTracer struct{}

type DisplayTracer struct{}

type VolumeTracer struct{}

type RecoveryTracer struct{}

type CommandTracer struct{}

var (
	Menu     = MenuTracer{}
	Mode     = ModeTracer{}
	Input    = InputTracer{}
	Display  = DisplayTracer{}
	Volume   = VolumeTracer{}
	Recovery = RecoveryTracer{}
	Command  = CommandTracer{}
)

func (MenuTracer) Cursor(container int, index int, label string) {
	logging.Trace("menu.cursor", map[string]interface{}{"container": container, "index": index, "label": label})
}

func (MenuTracer) Enter(label string) {
	logging.Trace("menu.enter", map[string]interface{}{"label": label})
}

func (MenuTracer) Ephemeral(open bool, entries int) {
	logging.Trace("menu.ephemeral", map[string]interface{}{"open": open, "entries": entries})
}

func (ModeTracer) Switch(from, to string, epoch uint64) {
	logging.Trace("mode.switch", map[string]interface{}{"from": from, "to": to, "epoch": epoch})
}

func (ModeTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("mode.error", map[string]interface{}{"error": err.Error()})
}

func (ModeTracer) StaleUpdate(key string, epoch, current uint64) {
	logging.Trace("mode.stale-update", map[string]interface{}{"key": key, "epoch": epoch, "current": current})
}

func (InputTracer) Rotate(knob string, dir int) {
	logging.Trace("input.rotate", map[string]interface{}{"knob": knob, "dir": dir})
}

func (InputTracer) Press(knob string, pressed bool) {
	logging.Trace("input.press", map[string]interface{}{"knob": knob, "pressed": pressed})
}

func (InputTracer) Noise(knob string, pin int) {
	logging.Trace("input.noise", map[string]interface{}{"knob": knob, "pin": pin})
}

func (InputTracer) Bounce(knob string, pin int) {
	logging.Trace("input.bounce", map[string]interface{}{"knob": knob, "pin": pin})
}

func (InputTracer) Dropped(knob string, kind string) {
	logging.Trace("input.dropped", map[string]interface{}{"knob": knob, "kind": kind})
}

func (DisplayTracer) View(view string) {
	logging.Trace("display.view", map[string]interface{}{"view": view})
}

func (DisplayTracer) Overflow(key string, width int, text string) {
	logging.Trace("display.overflow", map[string]interface{}{"key": key, "width": width, "text": text})
}

func (DisplayTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("display.error", map[string]interface{}{"error": err.Error()})
}

func (VolumeTracer) Change(level int, muted bool) {
	logging.Trace("volume.change", map[string]interface{}{"level": level, "muted": muted})
}

func (RecoveryTracer) Held(elapsed string) {
	logging.Trace("recovery.held", map[string]interface{}{"elapsed": elapsed})
}

func (RecoveryTracer) Triggered(unit string) {
	logging.Trace("recovery.triggered", map[string]interface{}{"unit": unit})
}

func (CommandTracer) Run(name string, args []string) {
	logging.Trace("command.run", map[string]interface{}{"name": name, "args": args})
}

func (CommandTracer) Result(name string, err error) {
	payload := map[string]interface{}{"name": name}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("command.result", payload)
}
