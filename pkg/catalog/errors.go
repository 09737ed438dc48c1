package catalog

import "fmt"

// ErrInvalidEntry indicates a logsource definition that can not be used for lookups
type ErrInvalidEntry struct {
	Index     int
	Logsource Logsource
	Msg       string
}

func (e ErrInvalidEntry) Error() string {
	return fmt.Sprintf("invalid catalog entry %d (%s): %s", e.Index, e.Logsource, e.Msg)
}
