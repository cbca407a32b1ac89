package strava

import "time"

// Athlete is the subset of Strava's athlete representation this service passes
// through. Unknown fields in the payload are ignored.
type Athlete struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username,omitempty"`
	ResourceState int       `json:"resource_state"`
	Firstname     string    `json:"firstname"`
	Lastname      string    `json:"lastname"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	Country       string    `json:"country,omitempty"`
	Sex           string    `json:"sex,omitempty"`
	Premium       bool      `json:"premium"`
	Summit        bool      `json:"summit"`
	Profile       string    `json:"profile,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AthleteRef struct {
	ID int64 `json:"id"`
}

// Activity is Strava's activity representation as returned by both the
// single-activity and the athlete-activities endpoints.
type Activity struct {
	ID                 int64      `json:"id"`
	Athlete            AthleteRef `json:"athlete"`
	Name               string     `json:"name"`
	Type               string     `json:"type"`
	SportType          string     `json:"sport_type,omitempty"`
	Distance           float64    `json:"distance"`
	MovingTime         int        `json:"moving_time"`
	ElapsedTime        int        `json:"elapsed_time"`
	TotalElevationGain float64    `json:"total_elevation_gain"`
	StartDate          time.Time  `json:"start_date"`
	StartDateLocal     time.Time  `json:"start_date_local"`
	Timezone           string     `json:"timezone,omitempty"`
	AverageSpeed       float64    `json:"average_speed,omitempty"`
	AverageHeartrate   float64    `json:"average_heartrate,omitempty"`
	SufferScore        float64    `json:"suffer_score,omitempty"`
	Description        string     `json:"description,omitempty"`
	Calories           float64    `json:"calories,omitempty"`
}
