package flow

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Identity distinguishes one invocation from every other in the same run,
// so that resources created by different invocations never collide.
type Identity struct {
	// Run tags the whole run, normally its start time in Unix seconds.
	Run string
	// Index is the invocation index within the run.
	Index int
	// UUID is random per invocation.
	UUID string
}

// NewIdentity returns the identity of invocation index in run.
func NewIdentity(run string, index int) Identity {
	return Identity{Run: run, Index: index, UUID: uuid.NewString()}
}

// ID returns "<run>_<index>", unique within and across runs.
func (id Identity) ID() string {
	return fmt.Sprintf("%s_%d", id.Run, id.Index)
}

// Vars returns the template variables describing the identity.
func (id Identity) Vars() map[string]string {
	return map[string]string{
		"id":    id.ID(),
		"index": strconv.Itoa(id.Index),
		"run":   id.Run,
		"uuid":  id.UUID,
	}
}
