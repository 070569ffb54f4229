package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentTime reports the current time in a requested timezone so agents can
// resolve relative date expressions before writing time-bounded SQL.
type CurrentTime struct {
	defaultTZ string
	now       func() time.Time
}

// NewCurrentTime creates the tool with a default timezone for requests that
// don't name one.
func NewCurrentTime(defaultTZ string) *CurrentTime {
	return &CurrentTime{defaultTZ: defaultTZ, now: time.Now}
}

func (t *CurrentTime) Name() string { return "current_time" }
func (t *CurrentTime) Description() string {
	return "Get the current date and time in a given IANA timezone"
}
func (t *CurrentTime) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"timezone": {"type": "string", "description": "IANA timezone name, e.g. US/Pacific. Defaults to the user's timezone."}
		}
	}`)
}

func (t *CurrentTime) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Timezone string `json:"timezone"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
	}

	tz := params.Timezone
	if tz == "" {
		tz = t.defaultTZ
	}
	if tz == "" {
		tz = "UTC"
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return t.now().In(loc).Format(time.RFC3339), nil
}
