package domain

// Task is the persisted work item. ID is assigned by the store on the first
// successful insert and never changes afterwards. Status is a free-form label
// ("Pending", "In Progress", "Completed" by convention), not a closed set.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      string
}
