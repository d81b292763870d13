package ports

import "hcpdash/domain/dataset"

// Panel is anything that reacts to a newly published dataset. Implementations must
// treat the dataset as read-only and must be comparable (pointer receivers), since
// the hub identifies panels by equality.
type Panel interface {
	ID() string
	OnData(ds *dataset.Dataset) error
}
