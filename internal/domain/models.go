package domain

import (
	"slices"
	"time"
)

// Лимиты хранения на одну команду
const (
	LedgerRetention   = 100
	FeedSize          = 5
	SnapshotRetention = 20
)

const ActiveAssignmentPending = "pending"

type Team struct {
	Id        string    `json:"team_id"`
	Name      string    `json:"team_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Reviewer struct {
	Id              string     `json:"reviewer_id"`
	TeamId          string     `json:"team_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	AssignmentCount int        `json:"assignment_count"`
	IsAbsent        bool       `json:"is_absent"`
	AbsentUntil     *time.Time `json:"absent_until,omitempty"`
	Tags            []string   `json:"tags"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r *Reviewer) HasTag(tagId string) bool {
	return slices.Contains(r.Tags, tagId)
}

// Clone возвращает глубокую копию, чтобы снимки и транзакции не делили срезы
func (r *Reviewer) Clone() *Reviewer {
	c := *r
	c.Tags = slices.Clone(r.Tags)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if r.AbsentUntil != nil {
		t := *r.AbsentUntil
		c.AbsentUntil = &t
	}
	return &c
}

type Tag struct {
	Id          string    `json:"tag_id"`
	TeamId      string    `json:"team_id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActionBy непрозрачная атрибуция от слоя идентификации, не проверяется
type ActionBy struct {
	Email     string  `json:"email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
}

type AssignmentEvent struct {
	Id           string    `json:"event_id"`
	TeamId       string    `json:"team_id"`
	ReviewerId   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Timestamp    time.Time `json:"timestamp"`
	Seq          int64     `json:"seq"`
	Forced       bool      `json:"forced"`
	Skipped      bool      `json:"skipped"`
	IsAbsentSkip bool      `json:"is_absent_skip"`
	TagId        *string   `json:"tag_id,omitempty"`
	ActionBy     *ActionBy `json:"action_by,omitempty"`
	PrUrl        *string   `json:"pr_url,omitempty"`
}

const (
	KindRegular    = "regular"
	KindForced     = "forced"
	KindSkipped    = "skipped"
	KindAbsentSkip = "absent_skip"
	KindTag        = "tag"
)

func (e *AssignmentEvent) Kind() string {
	switch {
	case e.IsAbsentSkip:
		return KindAbsentSkip
	case e.Skipped:
		return KindSkipped
	case e.Forced:
		return KindForced
	case e.TagId != nil:
		return KindTag
	default:
		return KindRegular
	}
}

// NewerThan сравнивает события по времени, при равенстве по порядку вставки
func (e *AssignmentEvent) NewerThan(o *AssignmentEvent) bool {
	if !e.Timestamp.Equal(o.Timestamp) {
		return e.Timestamp.After(o.Timestamp)
	}
	return e.Seq > o.Seq
}

type FeedItem struct {
	EventId      string    `json:"event_id"`
	ReviewerId   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Timestamp    time.Time `json:"timestamp"`
	Seq          int64     `json:"seq"`
	Forced       bool      `json:"forced"`
	Skipped      bool      `json:"skipped"`
	TagId        *string   `json:"tag_id,omitempty"`
	ActionBy     *ActionBy `json:"action_by,omitempty"`
	PrUrl        *string   `json:"pr_url,omitempty"`
}

func NewFeedItem(e *AssignmentEvent) *FeedItem {
	return &FeedItem{
		EventId:      e.Id,
		ReviewerId:   e.ReviewerId,
		ReviewerName: e.ReviewerName,
		Timestamp:    e.Timestamp,
		Seq:          e.Seq,
		Forced:       e.Forced,
		Skipped:      e.Skipped,
		TagId:        e.TagId,
		ActionBy:     e.ActionBy,
		PrUrl:        e.PrUrl,
	}
}

type Feed struct {
	Items        []*FeedItem `json:"items"`
	LastAssigned *FeedItem   `json:"last_assigned"`
}

func NewFeed(items []*FeedItem) *Feed {
	if items == nil {
		items = []*FeedItem{}
	}
	f := &Feed{Items: items}
	if len(items) > 0 {
		f.LastAssigned = items[0]
	}
	return f
}

type Snapshot struct {
	Id        string      `json:"snapshot_id"`
	TeamId    string      `json:"team_id"`
	Reason    string      `json:"reason"`
	Reviewers []*Reviewer `json:"reviewers"`
	CreatedAt time.Time   `json:"created_at"`
}

type ActiveAssignment struct {
	Id         string    `json:"active_assignment_id"`
	TeamId     string    `json:"team_id"`
	AssigneeId string    `json:"assignee_id"`
	AssignerId string    `json:"assigner_id"`
	PrUrl      *string   `json:"pr_url,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (a *ActiveAssignment) IsParty(reviewerId string) bool {
	return a.AssigneeId == reviewerId || a.AssignerId == reviewerId
}
