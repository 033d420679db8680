package consts

// Run status
const (
	State_Running = "running"
	State_Done    = "done"
	State_Error   = "error"
)

// Progress status reported per (agent, ticker)
const (
	Progress_Analyzing = "Analyzing"
	Progress_Done      = "Done"
	Progress_Error     = "Error"
)

// Stream event types
const (
	Event_Start    = "start"
	Event_Progress = "progress"
	Event_Complete = "complete"
	Event_Error    = "error"
)

// Portfolio actions
const (
	Action_Buy  = "buy"
	Action_Sell = "sell"
	Action_Hold = "hold"
)

// Analyst signals
const (
	Signal_Bullish = "bullish"
	Signal_Bearish = "bearish"
	Signal_Neutral = "neutral"
)
