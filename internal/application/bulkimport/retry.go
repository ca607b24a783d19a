package bulkimport

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	domain "github.com/mohammadpnp/candidate-import/internal/domain/bulkimport"
	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/mohammadpnp/candidate-import/internal/metrics"
	"github.com/sirupsen/logrus"
)

// RetryPolicy retries an operation with exponential backoff while Retryable
// accepts the returned error.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	Multiplier float64
	Retryable  func(error) bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 5,
		BaseDelay:  time.Second,
		Multiplier: 2,
		Retryable:  IsRateLimited,
	}
}

// DefaultLockRetryPolicy retries locker failures such as a lost Redis
// connection.
func DefaultLockRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 4,
		BaseDelay:  500 * time.Millisecond,
		Multiplier: 2,
		Retryable:  IsLockFailure,
	}
}

func IsLockFailure(err error) bool {
	return errors.Is(err, domain.ErrLockNotAcquired)
}

func IsRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = def.BaseDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.Retryable == nil {
		p.Retryable = def.Retryable
	}
	return p
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.MaxInterval = time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(p.MaxRetries)))
	if b.MaxInterval < p.BaseDelay {
		b.MaxInterval = p.BaseDelay
	}
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Do runs op until it succeeds, returns a non-retryable error, the retry
// budget is spent or ctx is done. onRetry is called before every wait.
func (p RetryPolicy) Do(ctx context.Context, op func() error, onRetry func(err error, wait time.Duration)) error {
	p = p.withDefaults()

	return backoff.RetryNotify(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx), onRetry)
}

// RetryingRegistrar retries rate-limited registration calls. Each retry
// blocks the calling worker.
type RetryingRegistrar struct {
	next   domain.CandidateRegistrar
	policy RetryPolicy
	logger *logrus.Entry
}

func NewRetryingRegistrar(next domain.CandidateRegistrar, policy RetryPolicy, logger *logrus.Entry) *RetryingRegistrar {
	if logger == nil {
		logger = logging.Nop()
	}
	return &RetryingRegistrar{next: next, policy: policy, logger: logger}
}

func (r *RetryingRegistrar) RegisterCandidate(ctx context.Context, candidate domain.CandidateRegistration, corporateUserID int64) (domain.RegistrationResult, error) {
	var result domain.RegistrationResult
	err := r.policy.Do(ctx, func() error {
		var callErr error
		result, callErr = r.next.RegisterCandidate(ctx, candidate, corporateUserID)
		return callErr
	}, func(err error, wait time.Duration) {
		metrics.RecordRegistrationRetry()
		r.logger.WithFields(logrus.Fields{
			"email": candidate.Email,
			"wait":  wait.String(),
		}).WithError(err).Warn("registration rate limited, retrying")
	})
	if err != nil {
		return domain.RegistrationResult{}, err
	}
	return result, nil
}
