package message

import "github.com/flemzord/tgnotify/pkg/botapi"

// Location is a point on the map sent with sendLocation. Latitude and
// longitude are always sent, even when zero.
type Location struct {
	Options
	Latitude             float64
	Longitude            float64
	HorizontalAccuracy   float64
	LivePeriod           int
	Heading              int
	ProximityAlertRadius int
}

// APIMethod implements Message.
func (m *Location) APIMethod() string { return "sendLocation" }

// Params implements Message.
func (m *Location) Params() botapi.Params {
	p := botapi.Params{"latitude": m.Latitude, "longitude": m.Longitude}.
		Add("horizontal_accuracy", m.HorizontalAccuracy).
		Add("live_period", m.LivePeriod).
		Add("heading", m.Heading).
		Add("proximity_alert_radius", m.ProximityAlertRadius)
	return m.apply(p)
}

// Venue is a named place sent with sendVenue.
type Venue struct {
	Options
	Latitude        float64
	Longitude       float64
	Title           string
	Address         string
	FoursquareID    string
	FoursquareType  string
	GooglePlaceID   string
	GooglePlaceType string
}

// APIMethod implements Message.
func (m *Venue) APIMethod() string { return "sendVenue" }

// Params implements Message.
func (m *Venue) Params() botapi.Params {
	p := botapi.Params{"latitude": m.Latitude, "longitude": m.Longitude}.
		Add("title", m.Title).
		Add("address", m.Address).
		Add("foursquare_id", m.FoursquareID).
		Add("foursquare_type", m.FoursquareType).
		Add("google_place_id", m.GooglePlaceID).
		Add("google_place_type", m.GooglePlaceType)
	return m.apply(p)
}

// Contact is a phone contact sent with sendContact.
type Contact struct {
	Options
	PhoneNumber string
	FirstName   string
	LastName    string
	VCard       string
}

// APIMethod implements Message.
func (m *Contact) APIMethod() string { return "sendContact" }

// Params implements Message.
func (m *Contact) Params() botapi.Params {
	p := botapi.Params{}.
		Add("phone_number", m.PhoneNumber).
		Add("first_name", m.FirstName).
		Add("last_name", m.LastName).
		Add("vcard", m.VCard)
	return m.apply(p)
}
