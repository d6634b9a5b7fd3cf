// Package events provides in-process notifications about batch run progress.
package events

import "time"

// EventType represents the type of event
type EventType string

const (
	// EventRunStarted is emitted after the batch is generated, right before workers launch
	EventRunStarted EventType = "run_started"
	// EventWorkerStarted is emitted when a worker begins its range
	EventWorkerStarted EventType = "worker_started"
	// EventTransactionStarted is emitted before a transaction's simulated work
	EventTransactionStarted EventType = "transaction_started"
	// EventTransactionCompleted is emitted after a transaction's result is written
	EventTransactionCompleted EventType = "transaction_completed"
	// EventWorkerFinished is emitted when a worker has processed its whole range
	EventWorkerFinished EventType = "worker_finished"
	// EventRunCompleted is emitted after all workers have joined
	EventRunCompleted EventType = "run_completed"
	// EventRunFailed is emitted when the run aborts, e.g. on a launch failure
	EventRunFailed EventType = "run_failed"
)

// Event represents a run progress event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Worker    int       `json:"worker,omitempty"`
	Data      EventData `json:"data,omitempty"`
}

// EventData contains event-specific data
type EventData struct {
	TransactionID int     `json:"transaction_id,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	DurationMs    int     `json:"duration_ms,omitempty"`
	Result        float64 `json:"result"`
	RangeStart    int     `json:"range_start"`
	RangeEnd      int     `json:"range_end"`
	Transactions  int     `json:"transactions,omitempty"`
	Workers       int     `json:"workers,omitempty"`
	ElapsedMs     float64 `json:"elapsed_ms,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// NewRunStartedEvent creates a run started event
func NewRunStartedEvent(runID string, transactions, workers int) Event {
	return Event{
		Type:      EventRunStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Transactions: transactions,
			Workers:      workers,
		},
	}
}

// NewWorkerStartedEvent creates a worker started event for the range [start, end)
func NewWorkerStartedEvent(runID string, worker, start, end int) Event {
	return Event{
		Type:      EventWorkerStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Worker:    worker,
		Data: EventData{
			RangeStart: start,
			RangeEnd:   end,
		},
	}
}

// NewTransactionStartedEvent creates a transaction started event
func NewTransactionStartedEvent(runID string, worker, txID int, kind string, durationMs int) Event {
	return Event{
		Type:      EventTransactionStarted,
		Timestamp: time.Now(),
		RunID:     runID,
		Worker:    worker,
		Data: EventData{
			TransactionID: txID,
			Kind:          kind,
			DurationMs:    durationMs,
		},
	}
}

// NewTransactionCompletedEvent creates a transaction completed event
func NewTransactionCompletedEvent(runID string, worker, txID int, kind string, result float64, elapsed time.Duration) Event {
	return Event{
		Type:      EventTransactionCompleted,
		Timestamp: time.Now(),
		RunID:     runID,
		Worker:    worker,
		Data: EventData{
			TransactionID: txID,
			Kind:          kind,
			Result:        result,
			ElapsedMs:     float64(elapsed) / float64(time.Millisecond),
		},
	}
}

// NewWorkerFinishedEvent creates a worker finished event
func NewWorkerFinishedEvent(runID string, worker int) Event {
	return Event{
		Type:      EventWorkerFinished,
		Timestamp: time.Now(),
		RunID:     runID,
		Worker:    worker,
	}
}

// NewRunCompletedEvent creates a run completed event
func NewRunCompletedEvent(runID string, elapsed time.Duration) Event {
	return Event{
		Type:      EventRunCompleted,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			ElapsedMs: float64(elapsed) / float64(time.Millisecond),
		},
	}
}

// NewRunFailedEvent creates a run failed event
func NewRunFailedEvent(runID string, err error) Event {
	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	return Event{
		Type:      EventRunFailed,
		Timestamp: time.Now(),
		RunID:     runID,
		Data: EventData{
			Error: errMsg,
		},
	}
}
