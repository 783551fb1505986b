package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active token JTI.
func (r *CacheKeyStruct) UserSessionKey(userID int64) string {
	return fmt.Sprintf("session:%d", userID)
}

var CacheKey = NewCacheKeyStruct()
