// Package domain holds the plain activity record served by an external
// activity feed. It has no connection to the Strava gateway.
package domain

type Activity struct {
	ActivityType string  `json:"activityType"`
	Duration     int     `json:"duration"` // seconds
	Distance     float64 `json:"distance"`
	Name         string  `json:"name"`
}
