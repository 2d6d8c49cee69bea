package domain

import "time"

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

func (k ToastKind) Valid() bool {
	switch k {
	case ToastSuccess, ToastError, ToastWarning, ToastInfo:
		return true
	default:
		return false
	}
}

type Toast struct {
	ID        string
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
}
