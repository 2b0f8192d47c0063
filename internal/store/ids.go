package store

import "time"

// idSource hands out creation-time ids. Each id is the current Unix time in
// milliseconds, bumped past the previous id when the clock has not advanced,
// so ids stay unique and increasing even within one tick or across a clock
// step backwards. Callers serialize access.
type idSource struct {
	now  func() time.Time
	last int64
}

func (s *idSource) next() int64 {
	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// observe raises the floor so loaded ids are never handed out again.
func (s *idSource) observe(id int64) {
	if id > s.last {
		s.last = id
	}
}
