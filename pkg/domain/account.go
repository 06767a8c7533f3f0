package domain

// UserType is the marketplace role of an account.
type UserType string

const (
	UserTypeProducer  UserType = "producer"
	UserTypeTrader    UserType = "trader"
	UserTypePurchaser UserType = "purchaser"
	UserTypeAdmin     UserType = "admin"
)

// Known reports whether the user type is one of the defined roles.
func (t UserType) Known() bool {
	switch t {
	case UserTypeProducer, UserTypeTrader, UserTypePurchaser, UserTypeAdmin:
		return true
	}
	return false
}

// AccountClassification drives which documents a subject must provide.
type AccountClassification string

const (
	ClassificationIndividual AccountClassification = "individual"
	ClassificationBusiness   AccountClassification = "business"
)

// Known reports whether the classification is one of the defined values.
// Unknown classifications fall back to the individual requirement set at the
// resolver so an account is never blocked by bad reference data.
func (c AccountClassification) Known() bool {
	return c == ClassificationIndividual || c == ClassificationBusiness
}
