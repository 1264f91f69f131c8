package nppes

// Column names from the NPPES registry extract. These exact strings are a
// contract with the publisher; every stage validates the columns it reads
// instead of assuming the layout.
const (
	// ColEntityType distinguishes individual providers ("1") from
	// organizations ("2").
	ColEntityType = "Entity Type Code"

	// ColPrimaryTaxonomySwitch marks whether the row names the provider's
	// primary specialty ("Y") or a secondary one ("N").
	ColPrimaryTaxonomySwitch = "Healthcare Provider Primary Taxonomy Switch_1"

	// ColState is the state of the business practice location.
	ColState = "Provider Business Practice Location Address State Name"

	// ColNPI is the National Provider Identifier, the natural key.
	ColNPI = "NPI"

	ColFirstName    = "Provider First Name"
	ColLastName     = "Provider Last Name (Legal Name)"
	ColPhone        = "Provider Business Practice Location Address Telephone Number"
	ColTaxonomyCode = "Healthcare Provider Taxonomy Code_1"
)

// Entity type and taxonomy switch values of interest.
const (
	entityTypeIndividual  = "1"
	primaryTaxonomyActive = "Y"
)

// DefaultState is the jurisdiction the MVP pass is scoped to.
const DefaultState = "TX"
