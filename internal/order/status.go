package order

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusReturned   Status = "returned"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true, StatusReturned: true},
	StatusDelivered:  {StatusCompleted: true, StatusReturned: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusReturned:   {},
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := validNext[st]; !ok {
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
	}
	return st, nil
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// releasesStock reports whether entering s gives the reserved stock back.
func (s Status) releasesStock() bool {
	return s == StatusCancelled || s == StatusReturned
}

// restocks is true only on the first move into a releasing status.
func restocks(from, to Status) bool {
	return to.releasesStock() && !from.releasesStock()
}
