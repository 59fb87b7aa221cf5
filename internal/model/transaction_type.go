package model

// TransactionType is a user-defined category label applied to transactions
// (e.g. "Groceries", "Salary"). Only its name is persisted.
type TransactionType struct {
	Name string
}
