package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fair-model-service/internal/domain"
)

// Payload is the input of one prediction job: a single record or an ordered batch.
type Payload struct {
	Records []map[string]any
	Batch   bool
}

// Single wraps one record.
func Single(rec map[string]any) Payload {
	return Payload{Records: []map[string]any{rec}}
}

// BatchOf wraps an ordered list of records.
func BatchOf(recs ...map[string]any) Payload {
	return Payload{Records: recs, Batch: true}
}

// Len is the number of records.
func (p Payload) Len() int { return len(p.Records) }

// Validate checks the shape: at least one record and no nil records.
func (p Payload) Validate() error {
	if len(p.Records) == 0 {
		if p.Batch {
			return fmt.Errorf("%w: empty batch", domain.ErrValidation)
		}
		return fmt.Errorf("%w: no input", domain.ErrValidation)
	}
	if !p.Batch && len(p.Records) != 1 {
		return fmt.Errorf("%w: single payload carries %d records", domain.ErrValidation, len(p.Records))
	}
	for i, r := range p.Records {
		if r == nil {
			return fmt.Errorf("%w: record %d is not an object", domain.ErrValidation, i)
		}
	}
	return nil
}

// ParsePayload decodes a JSON object or a non-empty JSON array of objects.
func ParsePayload(data []byte) (Payload, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("%w: empty body", domain.ErrValidation)
	}
	switch data[0] {
	case '{':
		var rec map[string]any
		if err := json.Unmarshal(data, &rec); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		return Single(rec), nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return Payload{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		recs := make([]map[string]any, 0, len(raw))
		for i, r := range raw {
			r = bytes.TrimSpace(r)
			if len(r) == 0 || r[0] != '{' {
				return Payload{}, fmt.Errorf("%w: record %d is not an object", domain.ErrValidation, i)
			}
			var rec map[string]any
			if err := json.Unmarshal(r, &rec); err != nil {
				return Payload{}, fmt.Errorf("%w: record %d: %v", domain.ErrValidation, i, err)
			}
			recs = append(recs, rec)
		}
		p := BatchOf(recs...)
		return p, p.Validate()
	default:
		return Payload{}, fmt.Errorf("%w: expected a JSON object or an array of objects", domain.ErrValidation)
	}
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if !p.Batch && len(p.Records) == 1 {
		return json.Marshal(p.Records[0])
	}
	if p.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Records)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	parsed, err := ParsePayload(data)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
