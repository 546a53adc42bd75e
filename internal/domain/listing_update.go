package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ListingField names an editable listing column. The set is closed so a typo in
// a field name fails at decode time instead of silently producing an empty diff.
type ListingField string

const (
	FieldTitle       ListingField = "title"
	FieldDescription ListingField = "description"
	FieldAgency      ListingField = "agency"
	FieldPhase       ListingField = "phase"
	FieldValue       ListingField = "value"
	FieldDeadline    ListingField = "deadline"
	FieldCategory    ListingField = "category"
	FieldStatus      ListingField = "status"
	FieldPhotoURL    ListingField = "photo_url"
)

func (f ListingField) IsValid() bool {
	switch f {
	case FieldTitle, FieldDescription, FieldAgency, FieldPhase, FieldValue,
		FieldDeadline, FieldCategory, FieldStatus, FieldPhotoURL:
		return true
	}
	return false
}

type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// ChangeSet is the "changes made" delta stored on audit entries.
type ChangeSet map[ListingField]FieldChange

func (c ChangeSet) Fields() []ListingField {
	fields := make([]ListingField, 0, len(c))
	for f := range c {
		fields = append(fields, f)
	}
	return fields
}

func (c *ChangeSet) UnmarshalJSON(data []byte) error {
	var raw map[string]FieldChange
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*c = nil
		return nil
	}

	out := make(ChangeSet, len(raw))
	for key, change := range raw {
		field := ListingField(key)
		if !field.IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidField, key)
		}
		out[field] = change
	}
	*c = out
	return nil
}

func (c ChangeSet) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[ListingField]FieldChange(c))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *ChangeSet) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil || data == nil {
		*c = nil
		return err
	}
	return c.UnmarshalJSON(data)
}

type NullableString struct {
	Value *string
	Set   bool
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

type NullableTime struct {
	Value *time.Time
	Set   bool
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// ListingUpdate is a typed partial update. Nil pointers and unset nullables
// mean "leave as is".
type ListingUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Agency      *string        `json:"agency,omitempty"`
	Phase       *Phase         `json:"phase,omitempty"`
	Amount      *float64       `json:"value,omitempty"`
	Deadline    NullableTime   `json:"deadline"`
	Category    *string        `json:"category,omitempty"`
	Status      *ListingStatus `json:"status,omitempty"`
	PhotoURL    NullableString `json:"photo_url"`
}

// Fields returns the fields present in the update mapped to their new values.
func (u ListingUpdate) Fields() map[ListingField]any {
	fields := make(map[ListingField]any)
	if u.Title != nil {
		fields[FieldTitle] = *u.Title
	}
	if u.Description != nil {
		fields[FieldDescription] = *u.Description
	}
	if u.Agency != nil {
		fields[FieldAgency] = *u.Agency
	}
	if u.Phase != nil {
		fields[FieldPhase] = *u.Phase
	}
	if u.Amount != nil {
		fields[FieldValue] = *u.Amount
	}
	if u.Deadline.Set {
		fields[FieldDeadline] = timeValue(u.Deadline.Value)
	}
	if u.Category != nil {
		fields[FieldCategory] = *u.Category
	}
	if u.Status != nil {
		fields[FieldStatus] = *u.Status
	}
	if u.PhotoURL.Set {
		fields[FieldPhotoURL] = stringValue(u.PhotoURL.Value)
	}
	return fields
}

func (u ListingUpdate) IsEmpty() bool {
	return len(u.Fields()) == 0
}

func (u ListingUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if u.Agency != nil && strings.TrimSpace(*u.Agency) == "" {
		return fmt.Errorf("%w: agency must not be empty", ErrValidation)
	}
	if u.Phase != nil && !u.Phase.IsValid() {
		return fmt.Errorf("%w: unknown phase %q", ErrValidation, *u.Phase)
	}
	if u.Amount != nil && *u.Amount < 0 {
		return fmt.Errorf("%w: value must not be negative", ErrValidation)
	}
	if u.Status != nil && !u.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, *u.Status)
	}
	return nil
}

// Diff returns the fields of u whose new value differs from the stored listing.
// A nil result means the update is a no-op.
func (u ListingUpdate) Diff(l *Listing) ChangeSet {
	changes := ChangeSet{}

	if u.Title != nil && *u.Title != l.Title {
		changes[FieldTitle] = FieldChange{From: l.Title, To: *u.Title}
	}
	if u.Description != nil && *u.Description != l.Description {
		changes[FieldDescription] = FieldChange{From: l.Description, To: *u.Description}
	}
	if u.Agency != nil && *u.Agency != l.Agency {
		changes[FieldAgency] = FieldChange{From: l.Agency, To: *u.Agency}
	}
	if u.Phase != nil && *u.Phase != l.Phase {
		changes[FieldPhase] = FieldChange{From: l.Phase, To: *u.Phase}
	}
	if u.Amount != nil && *u.Amount != l.Value {
		changes[FieldValue] = FieldChange{From: l.Value, To: *u.Amount}
	}
	if u.Deadline.Set && !sameTime(l.Deadline, u.Deadline.Value) {
		changes[FieldDeadline] = FieldChange{From: timeValue(l.Deadline), To: timeValue(u.Deadline.Value)}
	}
	if u.Category != nil && *u.Category != l.Category {
		changes[FieldCategory] = FieldChange{From: l.Category, To: *u.Category}
	}
	if u.Status != nil && *u.Status != l.Status {
		changes[FieldStatus] = FieldChange{From: l.Status, To: *u.Status}
	}
	if u.PhotoURL.Set && !sameString(l.PhotoURL, u.PhotoURL.Value) {
		changes[FieldPhotoURL] = FieldChange{From: stringValue(l.PhotoURL), To: stringValue(u.PhotoURL.Value)}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}

// Apply copies every present field onto l. Status bookkeeping (approved_at,
// approved_by) is the caller's job.
func (u ListingUpdate) Apply(l *Listing) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.Agency != nil {
		l.Agency = *u.Agency
	}
	if u.Phase != nil {
		l.Phase = *u.Phase
	}
	if u.Amount != nil {
		l.Value = *u.Amount
	}
	if u.Deadline.Set {
		l.Deadline = u.Deadline.Value
	}
	if u.Category != nil {
		l.Category = *u.Category
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.PhotoURL.Set {
		l.PhotoURL = u.PhotoURL.Value
	}
}

func (u ListingUpdate) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Fields())
}

func (u *ListingUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if !ListingField(key).IsValid() {
			return fmt.Errorf("%w: %s", ErrInvalidField, key)
		}
	}

	type plain ListingUpdate
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*u = ListingUpdate(decoded)
	return nil
}

func (u ListingUpdate) Value() (driver.Value, error) {
	b, err := u.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (u *ListingUpdate) Scan(src any) error {
	data, err := jsonBytes(src)
	if err != nil {
		return err
	}
	if data == nil {
		*u = ListingUpdate{}
		return nil
	}
	return u.UnmarshalJSON(data)
}

func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func stringValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
