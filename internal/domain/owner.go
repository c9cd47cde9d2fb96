package domain

// Owner represents a user that tasks belong to. Usernames are unique
// across the owners table. An owner's tasks are derived by query on
// Task.OwnerID; there is no back-pointer held on the owner itself.
type Owner struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
}

// NewOwner creates an Owner with the given username. The ID is zero until
// the storage layer assigns one; once assigned it is immutable.
// Returns an error if validation fails.
func NewOwner(username string) (*Owner, error) {
	owner := &Owner{Username: username}

	if err := owner.Validate(); err != nil {
		return nil, err
	}

	return owner, nil
}

// Validate checks if the Owner has valid data.
func (o *Owner) Validate() error {
	if o.Username == "" {
		return ErrEmptyUsername
	}

	return nil
}
