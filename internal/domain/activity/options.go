package activity

const (
	// DefaultLimit applies when no limit is requested.
	DefaultLimit = 20
	// MaxLimit caps a single page of activity.
	MaxLimit = 200
)

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	ProjectID    string
	ScopeID      *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
