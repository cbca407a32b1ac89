package strava

const (
	// Strava API URLs
	DefaultTokenURL   = "https://www.strava.com/oauth/token"
	DefaultAPIBaseURL = "https://www.strava.com/api/v3"

	athletePath           = "/athletes/%d"
	activityPath          = "/activities/%d"
	athleteActivitiesPath = "/athlete/activities"

	// A single page is requested for activity listings; anything past it is dropped.
	activitiesPage    = 1
	activitiesPerPage = 100
)
