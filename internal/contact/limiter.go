package contact

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxClients = 10000
	staleAfter        = 10 * time.Minute
)

type clientLimiter struct {
	key      string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter hands out a token bucket per client key and forgets the least
// recently seen clients once maxClients is reached.
type Limiter struct {
	limit      rate.Limit
	burst      int
	maxClients int
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List
}

// NewLimiter allows perMinute submissions per client with the given burst.
func NewLimiter(perMinute, burst int) *Limiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		limit:      rate.Every(time.Minute / time.Duration(perMinute)),
		burst:      burst,
		maxClients: defaultMaxClients,
		now:        time.Now,
		items:      map[string]*list.Element{},
		order:      list.New(),
	}
}

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	elem, ok := l.items[key]
	if ok {
		l.order.MoveToFront(elem)
		elem.Value.(*clientLimiter).lastSeen = now
	} else {
		if l.order.Len() >= l.maxClients {
			if back := l.order.Back(); back != nil {
				l.order.Remove(back)
				delete(l.items, back.Value.(*clientLimiter).key)
			}
		}
		elem = l.order.PushFront(&clientLimiter{
			key:      key,
			limiter:  rate.NewLimiter(l.limit, l.burst),
			lastSeen: now,
		})
		l.items[key] = elem
	}
	return elem.Value.(*clientLimiter).limiter.AllowN(now, 1)
}

// Sweep drops clients idle for longer than ten minutes.
func (l *Limiter) Sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := 0
	for e := l.order.Back(); e != nil; {
		prev := e.Prev()
		c := e.Value.(*clientLimiter)
		if now.Sub(c.lastSeen) > staleAfter {
			l.order.Remove(e)
			delete(l.items, c.key)
			removed++
		}
		e = prev
	}
	return removed
}

// Len reports how many clients are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.order.Len()
}
