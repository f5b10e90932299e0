package engine

import "go.uber.org/zap"

// Pause halts all mutating operations. Read-only queries and quotes
// stay available. Only the configured operator may pause.
func (e *Engine) Pause(caller string) error {
	if caller != e.params.Operator {
		return ErrUnauthorized
	}
	e.pauseMu.Lock()
	e.paused = true
	e.pauseMu.Unlock()
	e.logger.Warn("engine paused", zap.String("operator", caller))
	return nil
}

// Unpause resumes mutating operations. Only the operator may unpause.
func (e *Engine) Unpause(caller string) error {
	if caller != e.params.Operator {
		return ErrUnauthorized
	}
	e.pauseMu.Lock()
	e.paused = false
	e.pauseMu.Unlock()
	e.logger.Info("engine unpaused", zap.String("operator", caller))
	return nil
}

// IsPaused reports the current pause state.
func (e *Engine) IsPaused() bool {
	e.pauseMu.RLock()
	defer e.pauseMu.RUnlock()
	return e.paused
}
