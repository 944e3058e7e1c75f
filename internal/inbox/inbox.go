// Package inbox holds an ordered list of read/unread entries whose unread
// count is maintained incrementally on every mutation.
package inbox

import "sync"

type Entry[T any] struct {
	Key   string
	Read  bool
	Value T
}

// List is safe for concurrent use. The zero value is an empty list.
type List[T any] struct {
	mu      sync.RWMutex
	entries []Entry[T]
	unread  int
}

// Replace swaps the whole list and recounts unread entries.
func (l *List[T]) Replace(entries []Entry[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry[T](nil), entries...)
	l.unread = 0
	for _, e := range l.entries {
		if !e.Read {
			l.unread++
		}
	}
}

// Prepend puts e at the head of the list.
func (l *List[T]) Prepend(e Entry[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry[T]{e}, l.entries...)
	if !e.Read {
		l.unread++
	}
}

// MarkRead flips the first entry with key to read. It reports whether an
// unread entry transitioned.
func (l *List[T]) MarkRead(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		if l.entries[i].Key != key {
			continue
		}
		if l.entries[i].Read {
			return false
		}
		l.entries[i].Read = true
		l.unread--
		return true
	}
	return false
}

func (l *List[T]) MarkAllRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.entries {
		l.entries[i].Read = true
	}
	l.unread = 0
}

// Remove drops the first entry with key and reports whether one was found.
func (l *List[T]) Remove(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.Key != key {
			continue
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		if !e.Read {
			l.unread--
		}
		return true
	}
	return false
}

func (l *List[T]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.unread = 0
}

func (l *List[T]) Get(key string) (Entry[T], bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry[T]{}, false
}

// Entries returns a copy in list order.
func (l *List[T]) Entries() []Entry[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry[T](nil), l.entries...)
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *List[T]) UnreadCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.unread
}
