package service

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListInput selects one page of a listing.
type ListInput struct {
	Limit  int
	Offset int
}

// normalized clamps Limit to (0, MaxListLimit], defaulting to
// DefaultListLimit, and drops negative offsets.
func (in ListInput) normalized() ListInput {
	if in.Limit <= 0 {
		in.Limit = DefaultListLimit
	}
	if in.Limit > MaxListLimit {
		in.Limit = MaxListLimit
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
	return in
}
