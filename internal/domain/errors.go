package domain

import "fmt"

// DataErrorKind classifies a data integrity problem
type DataErrorKind string

const (
	DataErrorDuplicateNode   DataErrorKind = "duplicate_node"
	DataErrorEmptyNodeID     DataErrorKind = "empty_node_id"
	DataErrorDanglingLink    DataErrorKind = "dangling_link"
	DataErrorInvalidWeight   DataErrorKind = "invalid_weight"
	DataErrorUnknownTopology DataErrorKind = "unknown_topology"
	DataErrorMalformed       DataErrorKind = "malformed"
)

// DataError describes a malformed element of a topology. Loaders recover from
// element-level DataErrors by dropping the element.
type DataError struct {
	Kind   DataErrorKind `json:"kind"`
	ID     string        `json:"id,omitempty"`
	Reason string        `json:"reason"`
}

func (e *DataError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.ID, e.Reason)
}
