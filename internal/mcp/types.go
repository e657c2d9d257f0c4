package mcp

// OverlayShowInput is the input for the overlay_show tool.
type OverlayShowInput struct {
	Title           string   `json:"title" jsonschema:"required,Toast title line"`
	Body            string   `json:"body,omitempty" jsonschema:"Toast body text shown under the title"`
	Category        string   `json:"category,omitempty" jsonschema:"Event category selecting the text color: helltide, legion, world_boss or other"`
	BackgroundColor string   `json:"background_color,omitempty" jsonschema:"Hex background color like #0b1220"`
	BackgroundAlpha *float64 `json:"background_alpha,omitempty" jsonschema:"Surface opacity, clamped to 0.2-1.0"`
	Scale           *float64 `json:"scale,omitempty" jsonschema:"Size multiplier, clamped to 0.6-2.0"`
	X               *int     `json:"x,omitempty" jsonschema:"Optional x coordinate to show the toast at"`
	Y               *int     `json:"y,omitempty" jsonschema:"Optional y coordinate to show the toast at"`
}

// OverlayShowOutput is the output for the overlay_show tool.
type OverlayShowOutput struct {
	Shown bool `json:"shown"`
}

// OverlayStatusOutput is the output for the overlay_status tool.
type OverlayStatusOutput struct {
	Supported   bool   `json:"supported"`
	Running     bool   `json:"running"`
	Visible     bool   `json:"visible"`
	ConfigMode  bool   `json:"config_mode"`
	LastError   string `json:"last_error,omitempty"`
	X           *int   `json:"x,omitempty"`
	Y           *int   `json:"y,omitempty"`
	WindowState string `json:"window_state"`
}

// PositionInput is the input for the overlay_set_position tool.
type PositionInput struct {
	X int `json:"x" jsonschema:"required,Screen x coordinate of the overlay's top-left corner"`
	Y int `json:"y" jsonschema:"required,Screen y coordinate of the overlay's top-left corner"`
}

// EnterConfigInput is the input for the overlay_enter_config tool.
type EnterConfigInput struct {
	X *int `json:"x,omitempty" jsonschema:"Optional x coordinate to place the overlay before dragging"`
	Y *int `json:"y,omitempty" jsonschema:"Optional y coordinate to place the overlay before dragging"`
}

// EmptyInput is used by tools that take no arguments.
type EmptyInput struct{}

// AckOutput is a generic acknowledgement.
type AckOutput struct {
	OK bool `json:"ok"`
}

// ScheduleEventInfo describes one upcoming event.
type ScheduleEventInfo struct {
	Name string `json:"name,omitempty"`
	Time int64  `json:"time"`
}

// ScheduleOutput is the output for the schedule_get tool.
type ScheduleOutput struct {
	WorldBoss []ScheduleEventInfo `json:"world_boss"`
	Legion    []ScheduleEventInfo `json:"legion"`
	Helltide  []ScheduleEventInfo `json:"helltide"`
}
