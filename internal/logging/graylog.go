package logging

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// Facility is the GELF facility attached to every message.
const Facility = "missioncontrol"

// NewGraylogHandler dials the GELF UDP endpoint and returns a JSON handler
// writing to it. The returned closer releases the connection.
func NewGraylogHandler(address, level string) (slog.Handler, io.Closer, error) {
	w, err := gelf.NewWriter(address)
	if err != nil {
		return nil, nil, fmt.Errorf("creating gelf writer for %s: %w", address, err)
	}
	w.Facility = Facility

	return slog.NewJSONHandler(w, handlerOptions(parseLevel(level))), w, nil
}
