package domain

type RentModel string

const (
	RentFixed      RentModel = "FIXED"
	RentVolumeTier RentModel = "VOLUME_TIER"
)

// Location is a physical site hosting one or more terminals. The id is the
// identity: repeated ingestion of the same id updates display attributes
// only, never forks a duplicate row.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	RentModel RentModel `json:"rent_model"`
	BaseRent  float64   `json:"base_rent"`
}
