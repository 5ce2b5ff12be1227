package client

// Location is a resolved address with coordinates.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Application is one waitlist or passenger entry on a trip.
type Application struct {
	UserID         string   `json:"user_id"`
	Name           string   `json:"name"`
	Phone          string   `json:"phone,omitempty"`
	Photo          string   `json:"photo,omitempty"`
	Origin         Location `json:"origin"`
	Destination    Location `json:"destination"`
	RequestedSeats int      `json:"requested_seats"`
	Status         string   `json:"status"`
	AppliedAt      string   `json:"applied_at"`
}

// Trip is a published trip as the backend reports it.
type Trip struct {
	TripID         string        `json:"trip_id"`
	DriverUID      string        `json:"driver_uid"`
	DriverName     string        `json:"driver_name"`
	DriverPhoto    string        `json:"driver_photo,omitempty"`
	VehicleModel   string        `json:"vehicle_model"`
	VehiclePlate   string        `json:"vehicle_plate"`
	Start          Location      `json:"start"`
	Destination    Location      `json:"destination"`
	Time           string        `json:"time"`
	Seats          int           `json:"seats"`
	AvailableSeats int           `json:"available_seats"`
	Fare           float64       `json:"fare"`
	Status         string        `json:"status"`
	Waitlist       []Application `json:"waitlist"`
	PassengerList  []Application `json:"passenger_list"`
	CreatedAt      string        `json:"created_at"`
}

// ApplicationBy returns the entry filed by the given user, or nil.
func (t *Trip) ApplicationBy(userUID string) *Application {
	for i := range t.Waitlist {
		if t.Waitlist[i].UserID == userUID {
			return &t.Waitlist[i]
		}
	}
	for i := range t.PassengerList {
		if t.PassengerList[i].UserID == userUID {
			return &t.PassengerList[i]
		}
	}
	return nil
}

// Receipt is one passenger's settlement for a finished trip.
type Receipt struct {
	ReceiptID     string  `json:"receipt_id"`
	UserID        string  `json:"user_id"`
	Passenger     string  `json:"passenger"`
	Seats         int     `json:"seats"`
	FarePerSeat   float64 `json:"fare_per_seat"`
	Total         float64 `json:"total"`
	DistanceKm    float64 `json:"distance_km"`
	PaymentStatus string  `json:"payment_status"`
}

// Vehicle is a registered vehicle.
type Vehicle struct {
	VehicleID    string `json:"vehicle_id"`
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Capacity     int    `json:"capacity"`
	SOATURL      string `json:"soat_url"`
	PhotoURL     string `json:"photo_url,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// TripRef is one entry of a user's trip history.
type TripRef struct {
	TripID string `json:"trip_id"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// User is the caller's profile.
type User struct {
	UID            string    `json:"uid"`
	UserID         string    `json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Photo          string    `json:"photo,omitempty"`
	City           string    `json:"city,omitempty"`
	Address        string    `json:"address,omitempty"`
	NearbyLandmark string    `json:"nearby_landmark,omitempty"`
	IsDriver       bool      `json:"is_driver"`
	MyTrips        []TripRef `json:"my_trips"`
}

// Session is an authenticated user with their access token.
type Session struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

type tripListResponse struct {
	Trips []Trip `json:"trips"`
}

type tripMutationResponse struct {
	Message  string    `json:"message"`
	Trip     Trip      `json:"trip"`
	Receipts []Receipt `json:"receipts,omitempty"`
}
