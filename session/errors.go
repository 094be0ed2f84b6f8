package session

import "errors"

var (
	// ErrTraining is returned by operations refused while a fit is running.
	ErrTraining = errors.New("training in progress")
	// ErrEmptyDataset is returned when an operation needs at least one sample.
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrUnbalanced is returned when the coordinate sequences differ in length.
	ErrUnbalanced = errors.New("dataset coordinates are unbalanced")
	// ErrMalformedSample is returned when a "x,y" entry cannot be parsed.
	ErrMalformedSample = errors.New("malformed sample")
	// ErrInvalidControl is returned for a control value that is not a number.
	ErrInvalidControl = errors.New("invalid control value")
	// ErrInvalidHyperparameters is returned for a record no model can be built from.
	ErrInvalidHyperparameters = errors.New("invalid hyperparameters")
)
