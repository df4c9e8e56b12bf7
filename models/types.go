package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// The browser client posts raw form values: numbers arrive as strings, dates as
// "2006-01-02", and unselected references as "". The Flex types accept those
// shapes on input and encode to the native BSON types the stored documents use.

// FlexFloat accepts a JSON number, a numeric string, or "" (zero).
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

// Float returns the value as float64, treating nil as zero.
func (f *FlexFloat) Float() float64 {
	if f == nil {
		return 0
	}
	return float64(*f)
}

var flexTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FlexTime accepts RFC 3339 timestamps, date-only strings, or "" (cleared).
// The time is a named field rather than embedded so a cleared value is not
// treated as empty by the BSON omitempty check and is written as null.
type FlexTime struct {
	Time time.Time
}

func (t *FlexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range flexTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func (t FlexTime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if t.Time.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bsontype.DateTime, bsoncore.AppendDateTime(nil, t.Time.UnixMilli()), nil
}

// FlexID accepts an ObjectID hex string, or "" (no reference).
type FlexID struct {
	ID primitive.ObjectID
}

func (id *FlexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		id.ID = primitive.NilObjectID
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	id.ID = oid
	return nil
}

func (id FlexID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if id.ID.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bsontype.ObjectID, bsoncore.AppendObjectID(nil, id.ID), nil
}

// CompactIDs drops empty references.
func CompactIDs(in []FlexID) []FlexID {
	if in == nil {
		return nil
	}
	out := make([]FlexID, 0, len(in))
	for _, id := range in {
		if !id.ID.IsZero() {
			out = append(out, id)
		}
	}
	return out
}
