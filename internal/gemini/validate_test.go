package gemini_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecanvas/codecanvas/internal/gemini"
)

// waitStatus polls until the validator leaves the checking state.
func waitStatus(t *testing.T, v *gemini.Validator) gemini.Status {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := v.Status(); st != gemini.StatusChecking {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("validator stuck in checking state")
	return ""
}

func TestValidator_ValidCredential(t *testing.T) {
	t.Parallel()
	v := gemini.NewValidator(func(context.Context, string) error {
		return nil
	}, time.Millisecond, nil)
	defer v.Stop()

	assert.Equal(t, gemini.StatusUnknown, v.Status())
	v.CredentialChanged("key")
	assert.Equal(t, gemini.StatusValid, waitStatus(t, v))
}

func TestValidator_InvalidCredential(t *testing.T) {
	t.Parallel()
	v := gemini.NewValidator(func(context.Context, string) error {
		return errors.New("permission denied")
	}, time.Millisecond, nil)
	defer v.Stop()

	v.CredentialChanged("bad-key")
	assert.Equal(t, gemini.StatusInvalid, waitStatus(t, v))
}

func TestValidator_EmptyCredentialResetsToUnknown(t *testing.T) {
	t.Parallel()
	var probes atomic.Int32
	v := gemini.NewValidator(func(context.Context, string) error {
		probes.Add(1)
		return nil
	}, time.Millisecond, nil)
	defer v.Stop()

	v.CredentialChanged("key")
	require.Equal(t, gemini.StatusValid, waitStatus(t, v))

	v.CredentialChanged("")
	assert.Equal(t, gemini.StatusUnknown, v.Status())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), probes.Load())
}

func TestValidator_DebounceDiscardsPendingProbe(t *testing.T) {
	t.Parallel()
	var probed atomic.Value
	v := gemini.NewValidator(func(_ context.Context, credential string) error {
		probed.Store(credential)
		return nil
	}, 50*time.Millisecond, nil)
	defer v.Stop()

	// Rapid changes within the debounce window: only the last credential
	// is ever probed.
	v.CredentialChanged("first")
	v.CredentialChanged("second")
	v.CredentialChanged("third")
	assert.Equal(t, gemini.StatusChecking, v.Status())

	require.Equal(t, gemini.StatusValid, waitStatus(t, v))
	assert.Equal(t, "third", probed.Load())
}

func TestValidator_StaleProbeResultDiscarded(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	v := gemini.NewValidator(func(_ context.Context, credential string) error {
		if credential == "slow" {
			<-release
			return errors.New("should be discarded")
		}
		return nil
	}, time.Millisecond, nil)
	defer v.Stop()

	v.CredentialChanged("slow")
	time.Sleep(20 * time.Millisecond) // let the slow probe start

	v.CredentialChanged("fast")
	require.Equal(t, gemini.StatusValid, waitStatus(t, v))

	// The slow probe finishes with an error, but its result is stale.
	close(release)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, gemini.StatusValid, v.Status())
}
