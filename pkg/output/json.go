package output

import (
	"io"

	"github.com/tidwall/sjson"

	"github.com/vertti/ttysplit/pkg/child"
)

// JSONPrinter writes one JSON object per event:
//
//	{"id":"...","event":"line","stream":"stdout","line":"hello"}
//	{"id":"...","event":"error","stream":"stderr","error":"read stderr: ..."}
//	{"id":"...","event":"exit","state":"exited","code":0}
//	{"id":"...","event":"exit","state":"signaled","signal":15,"signal_name":"terminated","code":143}
type JSONPrinter struct {
	Out io.Writer
	// ID is the spawn id copied into every event.
	ID string
}

// Line prints one line event.
func (p *JSONPrinter) Line(out child.Output) error {
	return p.write("line", map[string]any{
		"stream": out.Origin.String(),
		"line":   out.Line,
	})
}

// ReadError prints an error event for the failed stream.
func (p *JSONPrinter) ReadError(rerr *child.ReadError) error {
	return p.write("error", map[string]any{
		"stream": rerr.Origin.String(),
		"error":  rerr.Error(),
	})
}

// Exit prints the exit event. code is always the shell-style exit code.
func (p *JSONPrinter) Exit(status child.Status) error {
	fields := map[string]any{
		"state": status.State.String(),
		"code":  status.ExitCode(),
	}
	if status.State == child.StateSignaled {
		fields["signal"] = int(status.Signal)
		fields["signal_name"] = status.Signal.String()
	}
	return p.write("exit", fields)
}

// fieldOrder keeps the encoded keys stable.
var fieldOrder = []string{"stream", "line", "error", "state", "code", "signal", "signal_name"}

func (p *JSONPrinter) write(event string, fields map[string]any) error {
	doc, err := sjson.SetBytes([]byte(`{}`), "id", p.ID)
	if err != nil {
		return err
	}
	if doc, err = sjson.SetBytes(doc, "event", event); err != nil {
		return err
	}
	for _, key := range fieldOrder {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if doc, err = sjson.SetBytes(doc, key, v); err != nil {
			return err
		}
	}
	doc = append(doc, '\n')
	_, err = p.Out.Write(doc)
	return err
}
