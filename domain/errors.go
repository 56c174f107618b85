package domain

import "errors"

var (
	// ErrFetch will throw if the sale events could not be retrieved, it aborts the run
	ErrFetch = errors.New("fetch sale events failed")
	// ErrConversion will throw if a sale price or rate is not a number
	ErrConversion = errors.New("price conversion failed")
	// ErrFormat will throw if a sale misses a field required by the announcement
	ErrFormat = errors.New("announcement format failed")
	// ErrNoSaleSource will throw if neither a collection slug nor a contract address is set
	ErrNoSaleSource = errors.New("collection slug or contract address required")
)
