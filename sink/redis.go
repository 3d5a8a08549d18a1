// Package sink publishes finished suites to Redis so results from many
// hosts and runs can be compared in one place.
package sink

import (
	"context"
	"io"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fqcompressor/fqbench/bench"
)

// Publisher stores a finished suite somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, suite *bench.SuiteResult) error
	io.Closer
}

// Redis writes suites with one MULTI/EXEC transaction per suite.
type Redis struct {
	client *redis.Client
	logger logrus.FieldLogger
}

// Dial connects to the server named by a redis:// URL and checks it
// answers.
func Dial(ctx context.Context, url string, logger logrus.FieldLogger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	r := NewRedis(redis.NewClient(opts), logger)
	if err := r.client.Ping(ctx).Err(); err != nil {
		r.client.Close()
		return nil, errors.Wrapf(err, "connecting to %s", opts.Addr)
	}
	return r, nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, logger logrus.FieldLogger) *Redis {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Redis{client: client, logger: logger}
}

// Publish stores the suite metadata, its results and its leaderboard
// entries.
func (r *Redis) Publish(ctx context.Context, suite *bench.SuiteResult) error {
	cmds, err := Commands(suite)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	for _, args := range cmds {
		pipe.Do(ctx, args...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "publishing run %s", suite.RunID)
	}
	r.logger.WithFields(logrus.Fields{
		"run_id":   suite.RunID,
		"key":      RunKey(suite.RunID),
		"commands": len(cmds),
	}).Info("published results")
	return nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
