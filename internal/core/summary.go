package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the on-demand aggregate over all current records.
type Summary struct {
	Count      int
	Total      Money
	ByCategory []CategoryAmount
}
