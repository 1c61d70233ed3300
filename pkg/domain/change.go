package domain

// Action describes what happened to a record.
type Action string

// Change actions raised by the repository.
const (
	ActionAdded    Action = "added"
	ActionModified Action = "modified"
	ActionDeleted  Action = "deleted"
)

// Change is the broadcast notification raised after a repository mutation.
// Item holds an independent copy of the affected record (for example
// *FoodGroup); subscribers may keep or mutate it freely.
type Change struct {
	Entity EntityType
	Action Action
	Item   any
}
