package pdk

/*
 * Named outcome route a processor sends records to
 */
type Relationship struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Common routes, processors pick the ones they need
var (
	RelSuccess = &Relationship{
		Name:        "success",
		Description: "Records handled successfully",
	}

	RelFailure = &Relationship{
		Name:        "failure",
		Description: "Records that could not be handled",
	}

	RelOriginal = &Relationship{
		Name:        "original",
		Description: "The incoming records that triggered new ones",
	}
)
