package main

import (
	"os"
	"strconv"

	"go.uber.org/zap"
)

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// envInt returns the integer in key, or def when unset or invalid
func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		zap.L().Warn("ignoring invalid environment value", zap.String("key", key), zap.String("value", v))
		return def
	}
	return n
}
