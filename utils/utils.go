package utils

import (
	"os"
	"strconv"

	"github.com/danthegoodman1/tdastore/gologger"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/segmentio/ksuid"
)

var logger = gologger.NewLogger()

// shortIDAlphabet drops characters that are easy to mis-read in file names.
const shortIDAlphabet = "abcdefghikmonpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ0123456789"

func GetEnvOrDefault(env, defaultVal string) string {
	if e, ok := os.LookupEnv(env); ok && e != "" {
		return e
	}
	return defaultVal
}

// GetEnvOrDefaultInt exits the process when env is set but not an integer.
func GetEnvOrDefaultInt(env string, defaultVal int64) int64 {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal
	}
	n, err := strconv.ParseInt(e, 10, 64)
	if err != nil {
		logger.Fatal().Err(err).Str("env", env).Str("value", e).Msg("env var is not an integer")
	}
	return n
}

// GenKSortedID returns prefix followed by a ksuid, so keys sort by creation time.
func GenKSortedID(prefix string) string {
	return prefix + ksuid.New().String()
}

func GenRandomShortID() string {
	return gonanoid.MustGenerate(shortIDAlphabet, 8)
}

func Ptr[T any](s T) *T {
	return &s
}
