package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Listing is a property record returned by the listings backend.
type Listing struct {
	ID       ListingID `json:"id"`
	Name     string    `json:"name"`
	Price    float64   `json:"price"`
	Location string    `json:"location"`
	Image    string    `json:"image"`
}

// ListingID accepts both numeric and string ids on the wire.
type ListingID string

func (id *ListingID) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ListingID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ListingID(n.String())
	return nil
}

// MarshalJSON emits numeric ids as numbers so the backend's int() cast keeps working.
func (id ListingID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ListingID) String() string { return string(id) }
