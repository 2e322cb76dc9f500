package simulation

import (
	"time"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

// PendingForce is a force that stays in effect until ExpiresAt on the race
// clock.
type PendingForce struct {
	Vector    types.Vec2
	ExpiresAt time.Duration
}

// At returns the force vector in effect at race time now: the full vector
// strictly before expiry, zero from expiry on.
func (f PendingForce) At(now time.Duration) types.Vec2 {
	if now < f.ExpiresAt {
		return f.Vector
	}
	return types.Vec2{}
}

// ForceChannel holds a lane's pending forces, one slot per axis.
// A new force on an axis replaces the previous one.
type ForceChannel struct {
	drive  PendingForce
	steer  PendingForce
	pushes int
}

// Drive records a forward (positive) or backward (negative) force.
func (c *ForceChannel) Drive(forward float64, now, ttl time.Duration) {
	c.drive = PendingForce{
		Vector:    types.Vec2{Forward: forward},
		ExpiresAt: now + ttl,
	}
}

// Steer records a lateral force, negative toward the left wall.
func (c *ForceChannel) Steer(lateral float64, now, ttl time.Duration) {
	c.steer = PendingForce{
		Vector:    types.Vec2{Lateral: lateral},
		ExpiresAt: now + ttl,
	}
}

// CountPush bumps the push statistic.
func (c *ForceChannel) CountPush() {
	c.pushes++
}

func (c *ForceChannel) Pushes() int {
	return c.pushes
}

// Sample returns the combined force at race time now and drops expired
// records.
func (c *ForceChannel) Sample(now time.Duration) types.Vec2 {
	drive := c.drive.At(now)
	steer := c.steer.At(now)
	if drive == (types.Vec2{}) {
		c.drive = PendingForce{}
	}
	if steer == (types.Vec2{}) {
		c.steer = PendingForce{}
	}
	return types.Vec2{Forward: drive.Forward, Lateral: steer.Lateral}
}

// Pending returns both slots, mainly for inspection.
func (c *ForceChannel) Pending() (drive, steer PendingForce) {
	return c.drive, c.steer
}

// Cancel drops all pending forces without touching the push count.
func (c *ForceChannel) Cancel() {
	c.drive = PendingForce{}
	c.steer = PendingForce{}
}

// Reset cancels pending forces and zeroes the push count.
func (c *ForceChannel) Reset() {
	c.Cancel()
	c.pushes = 0
}
