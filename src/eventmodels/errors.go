package eventmodels

import "fmt"

var ErrMalformedTicker = fmt.Errorf("malformed option ticker")
var ErrIncompleteRecord = fmt.Errorf("incomplete record")
var ErrNoFilesFound = fmt.Errorf("no files found")
var ErrSourceUnavailable = fmt.Errorf("file source unavailable")
var ErrInvalidCriteria = fmt.Errorf("invalid screen criteria")
var ErrDatasetNotFound = fmt.Errorf("dataset not found")
