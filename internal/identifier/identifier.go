package identifier

import (
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

var node *snowflake.Node

// Init initializes the snowflake node used for join-row IDs. Node ID should
// be unique across all instances (0-1023).
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return err
	}
	node = n
	return nil
}

// New returns an opaque unique ID for a new entity row.
func New() string {
	return uuid.NewString()
}

// NextJoinID returns a unique ID for a tag/key join row. Join-row identity
// is not meaningful to callers; rows are freely re-created on tag sync.
func NextJoinID() int64 {
	return node.Generate().Int64()
}
