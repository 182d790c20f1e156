package prim

import "sync"

// Locker is satisfied by both lock types.
type Locker interface {
	Lock()
	Unlock()
}

// CritSec is the lightweight intra-process lock. Uncontended acquisition
// stays in user space; contended waiters spin briefly before parking.
// The zero value is unlocked.
type CritSec struct {
	mu sync.Mutex
}

// Lock acquires c.
func (c *CritSec) Lock() { c.mu.Lock() }

// Unlock releases c.
func (c *CritSec) Unlock() { c.mu.Unlock() }

// Mutex is the heavier lock. Every acquisition and release is a channel
// hand-off through the scheduler, the way a kernel mutex object costs a
// system call even when uncontended. The zero value is usable; the channel
// is created on first Lock.
type Mutex struct {
	once sync.Once
	ch   chan struct{}
}

func (m *Mutex) init() {
	m.once.Do(func() { m.ch = make(chan struct{}, 1) })
}

// Lock blocks until m is free and then acquires it.
func (m *Mutex) Lock() {
	m.init()
	m.ch <- struct{}{}
}

// Unlock releases m. It panics if m is not locked.
func (m *Mutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("prim: unlock of unlocked Mutex")
	}
}

// Guard holds a lock until Unlock is called. Unlock is idempotent, so the
// usual pattern is
//
//	g := prim.Acquire(&mu)
//	defer g.Unlock()
//	...
//	g.Unlock() // early release before slow work
type Guard[L Locker] struct {
	l      L
	locked bool
}

// Acquire locks l and returns a guard for it.
func Acquire[L Locker](l L) Guard[L] {
	l.Lock()
	return Guard[L]{l: l, locked: true}
}

// Unlock releases the lock if the guard still holds it.
func (g *Guard[L]) Unlock() {
	if g.locked {
		g.locked = false
		g.l.Unlock()
	}
}

// Locked reports whether the guard still holds its lock.
func (g *Guard[L]) Locked() bool { return g.locked }
