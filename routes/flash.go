/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/gob"
	"fmt"

	"github.com/flamego/session"
)

// FlashType is the style of a flash message.
type FlashType string

// Flash message types.
const (
	FlashError FlashType = "error"
	FlashInfo  FlashType = "info"
)

// FlashMessage is shown once on the next page a viewer loads.
type FlashMessage struct {
	Type    FlashType
	Message string
}

func init() {
	gob.Register(FlashMessage{})
}

func setFlash(s session.Session, typ FlashType, format string, args ...any) {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	s.SetFlash(FlashMessage{Type: typ, Message: msg})
}

// SetErrorFlash queues an error message, formatted with args when given.
func SetErrorFlash(s session.Session, format string, args ...any) {
	setFlash(s, FlashError, format, args...)
}

// SetInfoFlash queues an informational message, formatted with args when
// given.
func SetInfoFlash(s session.Session, format string, args ...any) {
	setFlash(s, FlashInfo, format, args...)
}
