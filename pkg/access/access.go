// Package access answers "may this actor do that" questions for the save hook
// and the UI injector.
package access

import "strings"

// Actor is the user on whose behalf a page is rendered or a post is saved.
type Actor struct {
	Name         string   `json:"name" yaml:"name"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
}

// Checker decides whether an actor holds a capability.
type Checker interface {
	Can(actor Actor, capability string) bool
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(actor Actor, capability string) bool

// Can implements Checker.
func (fn CheckerFunc) Can(actor Actor, capability string) bool {
	if fn == nil {
		return false
	}
	return fn(actor, capability)
}

// Capabilities grants exactly the capabilities listed on the actor. The
// wildcard "*" grants everything.
type Capabilities struct{}

var _ Checker = Capabilities{}

// Can implements Checker. A blank capability is always denied, even for a
// "*" actor. The taxonomy registry fills a blank assign capability with
// edit_posts before it reaches a Checker.
func (Capabilities) Can(actor Actor, capability string) bool {
	capability = strings.TrimSpace(capability)
	if capability == "" {
		return false
	}
	for _, held := range actor.Capabilities {
		held = strings.TrimSpace(held)
		if held == "*" || held == capability {
			return true
		}
	}
	return false
}
