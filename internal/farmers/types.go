package farmers

// Farmer is a public directory entry.
type Farmer struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	FarmName        string   `json:"farm_name" yaml:"farm_name"`
	Location        string   `json:"location" yaml:"location"`
	Bio             string   `json:"bio" yaml:"bio"`
	Rating          float64  `json:"rating" yaml:"rating"`
	ReviewCount     int      `json:"review_count" yaml:"review_count"`
	Certifications  []string `json:"certifications" yaml:"certifications"`
	Specialties     []string `json:"specialties" yaml:"specialties"`
	YearsExperience int      `json:"years_experience" yaml:"years_experience"`
	JoinedDate      string   `json:"joined_date" yaml:"joined_date"`
	FarmSize        string   `json:"farm_size,omitempty" yaml:"farm_size"`
	FarmingMethod   string   `json:"farming_method,omitempty" yaml:"farming_method"`
}

// ListFilters narrows the directory.
type ListFilters struct {
	// Location matches case-insensitively anywhere in the location string.
	Location string
	// Specialty matches one of the farmer's specialties exactly, ignoring case.
	Specialty string
}
