package ui

import "errors"

// BusNotifier shows transfer notifications as toasts by publishing them on the bus.
type BusNotifier struct{}

func (BusNotifier) Success(msg string) {
	PublishSuccess(msg, "Transfer")
}

func (BusNotifier) Failure(msg string) {
	PublishError(errors.New(msg), "Transfer")
}
