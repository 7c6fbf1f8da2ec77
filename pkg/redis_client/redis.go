package redis_client

import (
	"context"
	"strconv"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/trenovivo/trenovivo/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"

// Connect establishes the shared redis connection used by the station
// directory cache. Redis is optional: with no address configured the
// directory runs uncached and Connect is a no-op.
func Connect() error {
	env := util.GetEnvironmentVariables()

	address := env["TRENOVIVO_REDIS_ADDRESS"]
	if address == "" {
		log.Info().Msg("Skipping Redis setup")
		return nil
	}
	if address == "default" {
		address = defaultConnectionAddress
	}

	database := 0
	if env["TRENOVIVO_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRENOVIVO_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	Client = redis.NewClient(&redis.Options{
		Addr:     address,
		Password: env["TRENOVIVO_REDIS_PASSWORD"],
		DB:       database,
	})

	ping := func() error {
		return Client.Ping(context.Background()).Err()
	}

	retryBackoff := backoff.NewExponentialBackOff()
	if err := backoff.Retry(ping, backoff.WithMaxRetries(retryBackoff, 5)); err != nil {
		Client = nil
		return err
	}

	return nil
}
