package task

import "errors"

var (
	ErrNotFound         = errors.New("task not found")
	ErrRewardBelowFloor = errors.New("reward is below the minimum for this task type")
	ErrInvalidPayload   = errors.New("invalid task payload")
)
