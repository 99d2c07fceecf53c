package models

const (
	CollectionPresentations = "presentations"
	CollectionQuizzes       = "quizzes"
)

const (
	ActionAdded    = "added"
	ActionUpserted = "upserted"
	ActionReplaced = "replaced"
	ActionDeleted  = "deleted"
)

// ChangeEvent is pushed to change feed subscribers after a successful write.
type ChangeEvent struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	ID         string `json:"id,omitempty"`
}
