package keybuilder

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	Redis string = "redis"
	Run   string = "run"
)

func RedisRunKeyBuild(id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", Redis, Run, id)
}
