package store

import (
	"encoding/json"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
)

const sessionKey = "filters"

// SessionState is the persisted UI session: the last filter selection, the
// lock flag guarding it against sanitization on re-upload, and the cut-off
// date label.
type SessionState struct {
	Selection  model.FilterSelection `json:"selection"`
	Lock       bool                  `json:"lock"`
	CutoffDate string                `json:"cutoffDate"`
}

// GetSession loads the persisted session state, defaulting to an empty one
func (s *Store) GetSession() (*SessionState, error) {
	raw, found, err := s.Get(sessionKey)
	if err != nil {
		return nil, err
	}

	state := &SessionState{}
	if !found {
		return state, nil
	}

	if err := json.Unmarshal([]byte(raw), state); err != nil {
		return nil, err
	}
	return state, nil
}

// SaveSession persists the session state
func (s *Store) SaveSession(state *SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.Set(sessionKey, string(raw))
}
