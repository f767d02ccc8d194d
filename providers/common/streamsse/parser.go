package streamsse

import (
	"bufio"
	"io"
	"strings"
)

// Event is one server-sent event: the optional event name and the joined
// data payload.
type Event struct {
	Name string
	Data string
}

// HandlerFunc consumes one complete event. Returning an error stops parsing.
type HandlerFunc func(Event) error

// Parse reads server-sent events from r and invokes fn once per complete
// event. Events without any data line are skipped. Parsing ends at EOF, on a
// read error, or when fn returns an error.
func Parse(r io.Reader, fn HandlerFunc) error {
	scanner := bufio.NewScanner(r)
	// Provider payload lines can be large.
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	var pending Event
	var data []string

	dispatch := func() error {
		ev := pending
		pending = Event{}
		if len(data) == 0 {
			return nil
		}
		ev.Data = strings.Join(data, "\n")
		data = data[:0]
		return fn(ev)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		switch {
		case line == "":
			if err := dispatch(); err != nil {
				return err
			}
		case strings.HasPrefix(line, ":"):
			// Comment / keep-alive line.
		case strings.HasPrefix(line, "event:"):
			pending.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		default:
			// Unknown fields (id, retry, ...) carry nothing we consume.
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return dispatch()
}
