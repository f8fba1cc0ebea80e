package domain

// InterestRequest is the payload of an "I'm interested" submission.
type InterestRequest struct {
	ListingID ListingID `json:"property_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
}

// VisitRequest is the payload of a visit booking.
type VisitRequest struct {
	ListingID ListingID `json:"property_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
}

const StatusSuccess = "success"

// SubmitResult is the backend's answer to either submission. Message is always user-displayable.
type SubmitResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r SubmitResult) OK() bool { return r.Status == StatusSuccess }
