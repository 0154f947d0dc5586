// Package services orchestrates the stores, the AI collaborator and the
// message broker.
//
// This file holds the strategies that decide whether a deadline reminder
// should go out again for a list that is already due.
package services

import (
	"fmt"
	"time"
)

// ReminderCadence decides whether a list due in daysLeft days should be
// reminded, given when it was last reminded.
type ReminderCadence interface {
	IsDue(lastSent, now time.Time, daysLeft, window int) bool
}

// DailyCadence reminds at most once per calendar day.
type DailyCadence struct{}

func (DailyCadence) IsDue(lastSent, now time.Time, _, _ int) bool {
	if lastSent.IsZero() {
		return true
	}
	return lastSent.Format("2006-01-02") != now.Format("2006-01-02")
}

// reminderMilestones are the days-left values MilestoneCadence fires on.
var reminderMilestones = map[int]bool{30: true, 14: true, 7: true, 3: true, 1: true, 0: true}

// MilestoneCadence reminds only when daysLeft is 30, 14, 7, 3, 1 or 0,
// once per day.
type MilestoneCadence struct{}

func (MilestoneCadence) IsDue(lastSent, now time.Time, daysLeft, window int) bool {
	if !reminderMilestones[daysLeft] {
		return false
	}
	return DailyCadence{}.IsDue(lastSent, now, daysLeft, window)
}

// Cadence names accepted in configuration.
const (
	CadenceDaily      = "daily"
	CadenceMilestones = "milestones"
)

var cadences = map[string]ReminderCadence{
	CadenceDaily:      DailyCadence{},
	CadenceMilestones: MilestoneCadence{},
}

// GetReminderCadence returns the cadence registered under name.
func GetReminderCadence(name string) (ReminderCadence, error) {
	c, ok := cadences[name]
	if !ok {
		return nil, fmt.Errorf("unknown reminder cadence: %s", name)
	}
	return c, nil
}
