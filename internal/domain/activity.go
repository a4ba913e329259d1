package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Activity is one entry in an issue's change log. Payload carries the
// action-specific details as a tagged union: exactly one concrete payload
// type exists per action kind.
type Activity struct {
	ID        string
	IssueID   string
	UserID    *string
	Action    ActivityAction
	Payload   ActivityPayload
	CreatedAt time.Time
}

// ActivityPayload is implemented by one payload struct per action kind.
type ActivityPayload interface {
	Kind() ActivityAction
}

type CreatedPayload struct {
	IssueKey string `json:"issue_key"`
	Title    string `json:"title"`
}

func (CreatedPayload) Kind() ActivityAction { return ActionCreated }

// FieldChange records a single field edit inside an updated activity.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

type UpdatedPayload struct {
	Changes []FieldChange `json:"changes"`
}

func (UpdatedPayload) Kind() ActivityAction { return ActionUpdated }

type StatusChangedPayload struct {
	FromStatusID string         `json:"from_status_id"`
	FromName     string         `json:"from_name"`
	FromCategory StatusCategory `json:"from_category"`
	ToStatusID   string         `json:"to_status_id"`
	ToName       string         `json:"to_name"`
	ToCategory   StatusCategory `json:"to_category"`
}

func (StatusChangedPayload) Kind() ActivityAction { return ActionStatusChanged }

type AssignedPayload struct {
	FromUserID *string `json:"from_user_id,omitempty"`
	FromName   string  `json:"from_name,omitempty"`
	ToUserID   *string `json:"to_user_id,omitempty"`
	ToName     string  `json:"to_name,omitempty"`
}

func (AssignedPayload) Kind() ActivityAction { return ActionAssigned }

type CommentedPayload struct {
	CommentID string `json:"comment_id"`
	Preview   string `json:"preview"`
}

func (CommentedPayload) Kind() ActivityAction { return ActionCommented }

type SprintChangedPayload struct {
	FromSprintID *string `json:"from_sprint_id,omitempty"`
	FromName     string  `json:"from_name,omitempty"`
	ToSprintID   *string `json:"to_sprint_id,omitempty"`
	ToName       string  `json:"to_name,omitempty"`
}

func (SprintChangedPayload) Kind() ActivityAction { return ActionSprintChanged }

type TypeChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (TypeChangedPayload) Kind() ActivityAction { return ActionTypeChanged }

type PriorityChangedPayload struct {
	From Priority `json:"from"`
	To   Priority `json:"to"`
}

func (PriorityChangedPayload) Kind() ActivityAction { return ActionPriorityChanged }

// payloadEnvelope is the stored JSON shape: the discriminator plus the
// payload document itself.
type payloadEnvelope struct {
	Kind ActivityAction  `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// EncodePayload serializes a payload with its kind discriminator.
func EncodePayload(p ActivityPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("activity payload is nil")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s payload: %w", p.Kind(), err)
	}
	return json.Marshal(payloadEnvelope{Kind: p.Kind(), Data: data})
}

// DecodePayload deserializes a stored payload envelope back into its
// concrete payload type.
func DecodePayload(raw []byte) (ActivityPayload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parsing activity payload envelope: %w", err)
	}

	var p ActivityPayload
	switch env.Kind {
	case ActionCreated:
		p = &CreatedPayload{}
	case ActionUpdated:
		p = &UpdatedPayload{}
	case ActionStatusChanged:
		p = &StatusChangedPayload{}
	case ActionAssigned:
		p = &AssignedPayload{}
	case ActionCommented:
		p = &CommentedPayload{}
	case ActionSprintChanged:
		p = &SprintChangedPayload{}
	case ActionTypeChanged:
		p = &TypeChangedPayload{}
	case ActionPriorityChanged:
		p = &PriorityChangedPayload{}
	default:
		return nil, fmt.Errorf("unknown activity kind %q", env.Kind)
	}

	if err := json.Unmarshal(env.Data, p); err != nil {
		return nil, fmt.Errorf("parsing %s payload: %w", env.Kind, err)
	}
	return p, nil
}
