package gameclient

import (
	"log"

	gameapi "github.com/user-none/gamebridge/api"
)

// guard runs one library call. A panic from the client is logged with the
// client's identity and reported as a failed call.
func (c *GameClient) guard(method string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("GameClient: %s: exception in %s (author %s): %v", c.desc.ID, method, c.desc.Author, r)
			ok = false
		}
	}()
	fn()
	return true
}

// check runs a library call returning an error code and logs any
// failure. It returns true only when the call succeeded.
func (c *GameClient) check(method string, fn func() gameapi.Error) bool {
	rc := gameapi.ErrorNone
	if !c.guard(method, func() { rc = fn() }) {
		return false
	}
	if rc != gameapi.ErrorNone {
		c.logError(method, rc)
		return false
	}
	return true
}

func (c *GameClient) logError(method string, err error) {
	log.Printf("GameClient: %s: %s failed: %v", c.desc.ID, method, err)
}
