package domain

import (
	"fmt"
	"time"
)

type NotificationKind int

const (
	KindSuccess NotificationKind = iota
	KindError
)

func (k NotificationKind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("NotificationKind(%d)", int(k))
	}
}

func (k NotificationKind) MarshalText() ([]byte, error) {
	switch k {
	case KindSuccess, KindError:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown notification kind %d", int(k))
	}
}

func (k *NotificationKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "success":
		*k = KindSuccess
	case "error":
		*k = KindError
	default:
		return fmt.Errorf("unknown notification kind %q", b)
	}
	return nil
}

type Notification struct {
	ID        uint64           `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"created_at"`
}
