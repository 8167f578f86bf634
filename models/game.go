package models

// PeriodStatus describes where a game period is in its lifecycle
type PeriodStatus string

const (
	PeriodOpen    PeriodStatus = "open"
	PeriodClosing PeriodStatus = "closing"
	PeriodSettled PeriodStatus = "settled"
)

// GamePeriod is a snapshot of the external game clock
type GamePeriod struct {
	ID          int64        `json:"id"`
	SecondsLeft int          `json:"secondsLeft"`
	Status      PeriodStatus `json:"status"`
	LastResult  *int         `json:"lastResult"`
}

// PeriodResult is one settled draw in the global result history
type PeriodResult struct {
	Period int64  `json:"period"`
	Result int    `json:"result"`
	Color  string `json:"color"`
}
