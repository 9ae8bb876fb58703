package gemini

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is the credential validation state shown in settings.
type Status string

const (
	StatusUnknown  Status = "unknown"
	StatusChecking Status = "checking"
	StatusValid    Status = "valid"
	StatusInvalid  Status = "invalid"
)

// DefaultDebounce is the delay between a credential change and the
// validation probe. Changing the credential again within the delay
// discards the pending probe and schedules a new one.
const DefaultDebounce = 500 * time.Millisecond

// probeTimeout bounds the validation call itself.
const probeTimeout = 10 * time.Second

// ProbeFunc attempts a lightweight API call with the credential and
// returns an error when the credential is unusable.
type ProbeFunc func(ctx context.Context, credential string) error

// DefaultProbe issues a minimal generate call with a throwaway client.
func DefaultProbe(ctx context.Context, credential string) error {
	c, err := NewClient(ctx, credential, "", slog.Default())
	if err != nil {
		return err
	}
	_, err = c.Generate(ctx, "test")
	return err
}

// Validator debounces credential validation. There is no cancellation of
// a probe already in flight; a stale probe's result is discarded instead.
type Validator struct {
	mu     sync.Mutex
	status Status
	timer  *time.Timer
	seq    int // invalidates results of superseded probes
	delay  time.Duration
	probe  ProbeFunc
	logger *slog.Logger
}

// NewValidator creates a Validator. delay <= 0 uses DefaultDebounce and a
// nil probe uses DefaultProbe.
func NewValidator(probe ProbeFunc, delay time.Duration, logger *slog.Logger) *Validator {
	if probe == nil {
		probe = DefaultProbe
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{status: StatusUnknown, delay: delay, probe: probe, logger: logger}
}

// Status returns the current validation state.
func (v *Validator) Status() Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// CredentialChanged restarts the debounce window for the new credential.
// An empty credential resets the state to unknown without probing.
func (v *Validator) CredentialChanged(credential string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.seq++
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}

	if credential == "" {
		v.status = StatusUnknown
		return
	}

	v.status = StatusChecking
	seq := v.seq
	v.timer = time.AfterFunc(v.delay, func() {
		v.runProbe(seq, credential)
	})
}

// Stop discards any pending probe timer.
func (v *Validator) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
}

func (v *Validator) runProbe(seq int, credential string) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	err := v.probe(ctx, credential)

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		// The credential changed while the probe ran.
		return
	}
	if err != nil {
		v.logger.Debug("credential validation failed", "error", err)
		v.status = StatusInvalid
		return
	}
	v.status = StatusValid
}
