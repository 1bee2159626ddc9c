/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// Declined actions. None of these are fatal; the interaction layer shows Reason(err).
var (
	ErrRowOutOfRange          = errors.New("row out of range")
	ErrColumnOutOfRange       = errors.New("column out of range")
	ErrMeasureFull            = errors.New("measure full")
	ErrCrossesMeasureBoundary = errors.New("crosses measure boundary")
	ErrSpanOccupied           = errors.New("column is inside another note")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrInvalidTimeSignature   = errors.New("invalid time signature")
	ErrInvalidDynamic         = errors.New("invalid dynamic marking")
	ErrEmptyHistory           = errors.New("nothing to undo or redo")
)

// PlacementError carries the rejected request alongside the reason.
type PlacementError struct {
	Column   int
	Row      int
	Duration Duration
	Err      error
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("place %s at column %d row %d: %v", e.Duration.Label(), e.Column, e.Row, e.Err)
}

func (e *PlacementError) Unwrap() error { return e.Err }

// Reason codes surfaced to front ends.
const (
	ReasonNone                   = ""
	ReasonRowOutOfRange          = "RowOutOfRange"
	ReasonColumnOutOfRange       = "ColumnOutOfRange"
	ReasonMeasureFull            = "MeasureFull"
	ReasonCrossesMeasureBoundary = "CrossesMeasureBoundary"
	ReasonSpanOccupied           = "SpanOccupied"
	ReasonInvalidDuration        = "InvalidDuration"
	ReasonInvalidTimeSignature   = "InvalidTimeSignature"
	ReasonInvalidDynamic         = "InvalidDynamic"
	ReasonEmptyHistory           = "EmptyHistory"
	ReasonUnknown                = "Unknown"
)

// Reason maps an error to its stable reason code.
func Reason(err error) string {
	switch {
	case err == nil:
		return ReasonNone
	case errors.Is(err, ErrRowOutOfRange):
		return ReasonRowOutOfRange
	case errors.Is(err, ErrColumnOutOfRange):
		return ReasonColumnOutOfRange
	case errors.Is(err, ErrMeasureFull):
		return ReasonMeasureFull
	case errors.Is(err, ErrCrossesMeasureBoundary):
		return ReasonCrossesMeasureBoundary
	case errors.Is(err, ErrSpanOccupied):
		return ReasonSpanOccupied
	case errors.Is(err, ErrInvalidDuration):
		return ReasonInvalidDuration
	case errors.Is(err, ErrInvalidTimeSignature):
		return ReasonInvalidTimeSignature
	case errors.Is(err, ErrInvalidDynamic):
		return ReasonInvalidDynamic
	case errors.Is(err, ErrEmptyHistory):
		return ReasonEmptyHistory
	default:
		return ReasonUnknown
	}
}
