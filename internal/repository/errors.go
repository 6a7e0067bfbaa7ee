// Package repository implements the durable inventory store over
// MySQL.  Each aggregate gets its own repository struct holding a
// *sql.DB; multi-statement writes open their own transaction and
// roll back unless committed.  The sentinel errors below let
// handlers distinguish failure scenarios without inspecting driver
// errors.
package repository

import "errors"

// ErrEventNotFound is returned when an event does not exist or is
// not visible to the caller.  Handlers translate it into 404.
var ErrEventNotFound = errors.New("event not found")

// ErrTicketTypeNotFound is returned when a ticket type does not
// exist under the event being read or updated.
var ErrTicketTypeNotFound = errors.New("ticket type not found")

// ErrTicketNotFound is returned when a ticket does not exist or
// belongs to a different purchaser.
var ErrTicketNotFound = errors.New("ticket not found")

// ErrQrCodeNotFound is returned when no active QR code exists for a
// token or ticket.
var ErrQrCodeNotFound = errors.New("qr code not found")

// ErrEmailExists is returned by user creation when the email is
// already registered.  Handlers translate it into 409.
var ErrEmailExists = errors.New("email already exists")
