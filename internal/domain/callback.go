package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Telegram limits callback_data to 64 bytes.
const maxCallbackLen = 64

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionAck     = "ack"
	ActionDelay   = "delay"
	ActionAssign  = "assign"
	ActionReady   = "ready"

	EntityOrder    = "order"
	EntityPayment  = "payment"
	EntityDelivery = "delivery"
	EntityWaiter   = "waiter"
)

var callbackVocabulary = map[string]map[string]bool{
	EntityOrder:    {ActionApprove: true, ActionReject: true, ActionReady: true},
	EntityPayment:  {ActionApprove: true, ActionReject: true},
	EntityDelivery: {ActionApprove: true, ActionReject: true},
	EntityWaiter:   {ActionAck: true, ActionDelay: true, ActionAssign: true},
}

var ErrBadCallback = errors.New("malformed callback data")

// Callback is the payload of an inline button: {action}_{entityType}_{entityId}.
type Callback struct {
	Action     string
	EntityType string
	EntityID   string
}

func (c Callback) Encode() (string, error) {
	if err := c.validate(); err != nil {
		return "", err
	}
	s := c.Action + "_" + c.EntityType + "_" + c.EntityID
	if len(s) > maxCallbackLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrBadCallback, len(s), maxCallbackLen)
	}
	return s, nil
}

func ParseCallback(data string) (Callback, error) {
	parts := strings.SplitN(data, "_", 3)
	if len(parts) != 3 {
		return Callback{}, fmt.Errorf("%w: %q", ErrBadCallback, data)
	}
	c := Callback{Action: parts[0], EntityType: parts[1], EntityID: parts[2]}
	if err := c.validate(); err != nil {
		return Callback{}, err
	}
	return c, nil
}

func (c Callback) validate() error {
	actions, ok := callbackVocabulary[c.EntityType]
	if !ok {
		return fmt.Errorf("%w: unknown entity %q", ErrBadCallback, c.EntityType)
	}
	if !actions[c.Action] {
		return fmt.Errorf("%w: action %q not allowed for %s", ErrBadCallback, c.Action, c.EntityType)
	}
	if c.EntityID == "" {
		return fmt.Errorf("%w: empty entity id", ErrBadCallback)
	}
	return nil
}
