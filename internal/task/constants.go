package task

// DefaultTaskListLimit caps ListUserTasks when the caller asks for a
// non-positive count.
const DefaultTaskListLimit = 50

// MaxTaskListLimit is the hard ceiling on a single task page.
const MaxTaskListLimit = 200
