package model

// MemberRecord is one row of the membership table.
type MemberRecord struct {
	MemberID   int
	FirstName  string
	LastName   string
	Email      string
	BoatLength float64
	BoatWidth  float64
	Spot       string
	Model      string
}

// ReconciledBoat is a boat that needs a place on the yard map this season.
// Length and Width include the handling margin.
type ReconciledBoat struct {
	Member    int
	Name      string
	Length    float64
	Width     float64
	Requested bool
}
