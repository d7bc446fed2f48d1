package jobsearch

import "errors"

var (
	ErrKeywordRequired    = errors.New("search keyword is required")
	ErrInvalidSalaryRange = errors.New("salary range minimum exceeds maximum")
)
