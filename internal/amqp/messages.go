package amqp

import (
	"encoding/json"
	"time"
)

// InsightRefreshMessage asks a worker to re-run the insight analysis.
// It carries no list data; the worker reads the current lists itself.
type InsightRefreshMessage struct {
	RequestID string    `json:"requestId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInsightRefreshMessage(requestID, reason string) *InsightRefreshMessage {
	return &InsightRefreshMessage{
		RequestID: requestID,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *InsightRefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InsightRefreshMessageFromJSON(data []byte) (*InsightRefreshMessage, error) {
	var msg InsightRefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DeadlineReminderMessage announces that a list's target date is close and
// its piggy bank does not cover the plan yet.
type DeadlineReminderMessage struct {
	ListID         string    `json:"listId"`
	ListName       string    `json:"listName"`
	TargetDate     string    `json:"targetDate"`
	DaysLeft       int       `json:"daysLeft"`
	RemainingCents int64     `json:"remainingCents"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
}

func (m *DeadlineReminderMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DeadlineReminderMessageFromJSON(data []byte) (*DeadlineReminderMessage, error) {
	var msg DeadlineReminderMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
