package model

import (
	"errors"
	"fmt"

	"github.com/actuallystonmai/product-recommender/internal/domain"
)

// TrainingError records which stage of a training run failed.
type TrainingError struct {
	Stage string
	Err   error
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("training stage %s: %v", e.Stage, e.Err)
}

func (e *TrainingError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, domain.ErrTraining) match every TrainingError.
func (e *TrainingError) Is(target error) bool {
	return target == domain.ErrTraining
}

func IsTrainingError(err error) bool {
	var target *TrainingError
	return errors.As(err, &target)
}
