package order

type Status string

const (
	StatusCreated         Status = "CREATED"
	StatusStarted         Status = "STARTED"
	StatusReadyToDelivery Status = "READY_TO_DELIVERY"
	StatusDelivering      Status = "DELIVERING"
	StatusCompleted       Status = "COMPLETED"
	StatusCanceled        Status = "CANCELED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusStarted, StatusReadyToDelivery,
		StatusDelivering, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Amendable reports whether items and delivery address may still change.
func (s Status) Amendable() bool {
	switch s {
	case StatusCreated, StatusStarted, StatusReadyToDelivery:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}
