package user

// Principal is the authenticated caller as resolved by the account
// collaborator's token introspection.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
}
