package probe

import "time"

// Defaults used when Config leaves a field empty.
const (
	DefaultSessions = 50
	DefaultTimeout  = 35 * time.Second
	DefaultJitterKm = 5.0

	// maxFollowupRounds stops a session whose followups never become ready.
	maxFollowupRounds = 10
	textAnswer        = "n/a"
	kmPerDegree       = 111.19
)

// DefaultCenter is the demo location of the bundled catalog.
var DefaultCenter = Location{Lat: 12.9716, Lng: 77.5946}

// DefaultTexts are vague requests spread over the bundled catalog.
var DefaultTexts = []string{
	"my back is killing me after the gym",
	"need my 2bhk cleaned before guests arrive",
	"car is covered in mud",
	"washing machine stopped spinning",
	"want glowing skin for a wedding",
	"fridge is making a weird noise",
	"house is a mess",
	"something relaxing this weekend",
	"help",
}
