package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

var ErrUnknownAction = errors.New("unknown action")

// Command actions accepted by Dispatch.
const (
	ActionStart    = "start"
	ActionStop     = "stop"
	ActionExtend   = "extend"
	ActionDuration = "duration"
	ActionLanguage = "language"
)

// Command is a request coming from outside the process: HTTP, the Redis bus
// or a status display button.
type Command struct {
	Action   string `json:"action" mapstructure:"action"`
	Minutes  int    `json:"minutes,omitempty" mapstructure:"minutes"`
	Language string `json:"language,omitempty" mapstructure:"language"`
	Source   string `json:"source,omitempty" mapstructure:"source"`
}

// DecodeCommand converts a loosely typed payload into a Command, so
// {"action": "start", "minutes": "25"} is accepted.
func DecodeCommand(input map[string]any) (Command, error) {
	var cmd Command
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cmd,
	})
	if err != nil {
		return Command{}, err
	}
	if err := decoder.Decode(input); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	cmd.Action = strings.ToLower(strings.TrimSpace(cmd.Action))
	if cmd.Action == "" {
		return Command{}, fmt.Errorf("decode command: %w: empty", ErrUnknownAction)
	}
	return cmd, nil
}

// ParseCommand decodes a JSON payload with DecodeCommand.
func ParseCommand(data []byte) (Command, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return DecodeCommand(raw)
}
